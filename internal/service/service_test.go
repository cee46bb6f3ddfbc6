package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/madhava-poojari/educonnect-api/internal/apperrors"
	"github.com/madhava-poojari/educonnect-api/internal/config"
	"github.com/madhava-poojari/educonnect-api/internal/models"
	"github.com/madhava-poojari/educonnect-api/internal/search"
	"github.com/madhava-poojari/educonnect-api/internal/session"
	"github.com/madhava-poojari/educonnect-api/internal/store"
	"github.com/madhava-poojari/educonnect-api/internal/utils"
	"github.com/sirupsen/logrus"
)

type fixture struct {
	cfg       *config.Config
	repo      *store.MemoryStore
	auth      *AuthService
	requests  *RequestService
	tutors    *TutorService
	dashboard *DashboardService
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newFixture(t *testing.T, mutate ...func(*config.Config)) *fixture {
	t.Helper()

	cfg := &config.Config{
		JWTSecret:       "test-secret",
		AccessTokenTTL:  time.Minute,
		RefreshTokenTTL: time.Hour,
		AuthMode:        config.AuthModeDemo,
		RequestTimeout:  time.Second,
	}
	for _, m := range mutate {
		m(cfg)
	}
	repo := store.NewMemoryStore()
	hash := ""
	if cfg.AuthMode == config.AuthModePassword {
		h, err := utils.HashPassword("password123")
		if err != nil {
			t.Fatalf("hash: %v", err)
		}
		hash = h
	}
	if err := store.Seed(context.Background(), repo, hash); err != nil {
		t.Fatalf("seed: %v", err)
	}
	log := quietLogger()
	f := &fixture{
		cfg:      cfg,
		repo:     repo,
		auth:     NewAuthService(cfg, repo, nil, log),
		requests: NewRequestService(repo, repo, log, cfg.RequestTimeout, cfg.SubmitDelay),
		tutors:   NewTutorService(repo, utils.NewFileStorage(t.TempDir(), "http://files.test"), log),
	}
	f.dashboard = NewDashboardService(f.auth, f.requests, f.tutors)
	return f
}

func (f *fixture) sessionFor(t *testing.T, email string) session.Session {
	t.Helper()
	u, err := f.repo.GetUserByEmail(context.Background(), email)
	if err != nil {
		t.Fatalf("user %s: %v", email, err)
	}
	return session.Login(*u, "tok", time.Now())
}

func validRequest() RequestInput {
	return RequestInput{
		TutorID:           "1",
		Subject:           "Mathematics",
		Class:             "Class 10",
		PreferredSchedule: []string{"Evening (6 PM - 10 PM)"},
		Duration:          "1-hour",
		Budget:            "₹800/hr",
		Location:          "Delhi, Sector 12",
		Message:           "Board exam prep",
		StartDate:         "2024-02-01",
	}
}

func wantKind(t *testing.T, err error, kind apperrors.Kind) {
	t.Helper()
	if got := apperrors.KindOf(err); got != kind {
		t.Fatalf("error kind = %q (%v), want %q", got, err, kind)
	}
}

func TestSubmitWithoutTimeSlotsAppendsNothing(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	john := f.sessionFor(t, store.DemoStudentEmail)
	before, _ := f.requests.ListForStudent(ctx, john)

	in := validRequest()
	in.PreferredSchedule = []string{" ", ""}
	_, err := f.requests.Submit(ctx, john, in)
	wantKind(t, err, apperrors.KindInvalidInput)
	if err.Error() != NoTimeSlotMessage {
		t.Fatalf("message = %q", err.Error())
	}
	if apperrors.FieldsOf(err)["preferred_schedule"] != NoTimeSlotMessage {
		t.Fatalf("fields = %v", apperrors.FieldsOf(err))
	}

	after, _ := f.requests.ListForStudent(ctx, john)
	if len(after) != len(before) {
		t.Fatalf("requests = %d, want %d", len(after), len(before))
	}
}

func TestSubmitAppendsOnePendingRequest(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	john := f.sessionFor(t, store.DemoStudentEmail)
	before, _ := f.requests.ListForStudent(ctx, john)

	in := validRequest()
	in.PreferredSchedule = append(in.PreferredSchedule, "Evening (6 PM - 10 PM)", "Morning (6 AM - 12 PM)")
	req, err := f.requests.Submit(ctx, john, in)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !req.Status.IsPending() || req.StudentID != store.DemoStudentID || req.TutorName != "Dr. Sarah Johnson" {
		t.Fatalf("request = %+v", req)
	}
	if len(req.PreferredSchedule) != 2 {
		t.Fatalf("duplicate slots not collapsed: %v", req.PreferredSchedule)
	}

	after, _ := f.requests.ListForStudent(ctx, john)
	if len(after) != len(before)+1 {
		t.Fatalf("requests = %d, want %d", len(after), len(before)+1)
	}
	if after[0].ID != req.ID {
		t.Fatalf("newest request not first: %s", after[0].ID)
	}
	for _, r := range before {
		if r.ID == req.ID {
			t.Fatal("new id collides with an existing request")
		}
	}

	second, err := f.requests.Submit(ctx, john, validRequest())
	if err != nil {
		t.Fatalf("second submit: %v", err)
	}
	if second.ID == req.ID {
		t.Fatal("ids must be distinct")
	}
}

func TestSubmitRejections(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	john := f.sessionFor(t, store.DemoStudentEmail)
	sarah := f.sessionFor(t, store.DemoTutorEmail)

	_, err := f.requests.Submit(ctx, session.Session{}, validRequest())
	wantKind(t, err, apperrors.KindUnauthorized)

	_, err = f.requests.Submit(ctx, sarah, validRequest())
	wantKind(t, err, apperrors.KindForbidden)

	in := validRequest()
	in.TutorID = "404"
	_, err = f.requests.Submit(ctx, john, in)
	wantKind(t, err, apperrors.KindNotFound)

	in = validRequest()
	in.Subject = "Astrology"
	in.Location = " "
	_, err = f.requests.Submit(ctx, john, in)
	wantKind(t, err, apperrors.KindInvalidInput)
	fields := apperrors.FieldsOf(err)
	if fields["location"] != "Location is required" || fields["subject"] == "" {
		t.Fatalf("fields = %v", fields)
	}

	in = validRequest()
	in.PreferredSchedule = []string{"Midnight"}
	_, err = f.requests.Submit(ctx, john, in)
	wantKind(t, err, apperrors.KindInvalidInput)

	in = validRequest()
	in.StartDate = "01/02/2024"
	_, err = f.requests.Submit(ctx, john, in)
	wantKind(t, err, apperrors.KindInvalidInput)
}

func TestSubmitTimesOutWithoutAppending(t *testing.T) {
	t.Parallel()

	f := newFixture(t, func(c *config.Config) {
		c.RequestTimeout = 20 * time.Millisecond
		c.SubmitDelay = time.Second
	})
	ctx := context.Background()
	john := f.sessionFor(t, store.DemoStudentEmail)
	before, _ := f.repo.ListRequestsByStudent(ctx, store.DemoStudentID)

	start := time.Now()
	_, err := f.requests.Submit(ctx, john, validRequest())
	wantKind(t, err, apperrors.KindTimeout)
	if time.Since(start) > 500*time.Millisecond {
		t.Fatalf("submit ignored its deadline: %v", time.Since(start))
	}
	after, _ := f.repo.ListRequestsByStudent(ctx, store.DemoStudentID)
	if len(after) != len(before) {
		t.Fatal("timed out submit must not append")
	}
}

func TestSubmitHonoursDelay(t *testing.T) {
	t.Parallel()

	f := newFixture(t, func(c *config.Config) { c.SubmitDelay = 30 * time.Millisecond })
	start := time.Now()
	if _, err := f.requests.Submit(context.Background(), f.sessionFor(t, store.DemoStudentEmail), validRequest()); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if time.Since(start) < 30*time.Millisecond {
		t.Fatal("submit returned before the configured delay")
	}
}

func pendingFor(t *testing.T, f *fixture, sess session.Session) []*models.TuitionRequest {
	t.Helper()
	reqs, err := f.requests.ListForTutor(context.Background(), sess)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var out []*models.TuitionRequest
	for _, r := range reqs {
		if r.Status.IsPending() {
			out = append(out, r)
		}
	}
	return out
}

func TestAcceptRejectTransitionOnce(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	sarah := f.sessionFor(t, store.DemoTutorEmail)

	pending := pendingFor(t, f, sarah)
	if len(pending) != 3 {
		t.Fatalf("pending = %d, want 3", len(pending))
	}
	target, other := pending[0], pending[1]

	got, err := f.requests.Accept(ctx, sarah, target.ID)
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if !got.Status.IsAccepted() {
		t.Fatalf("status = %s", got.Status)
	}

	_, err = f.requests.Reject(ctx, sarah, target.ID)
	wantKind(t, err, apperrors.KindConflict)
	_, err = f.requests.Accept(ctx, sarah, target.ID)
	wantKind(t, err, apperrors.KindConflict)

	still, _ := f.repo.GetRequestByID(ctx, target.ID)
	if !still.Status.IsAccepted() {
		t.Fatalf("conflicting decision changed state to %s", still.Status)
	}
	untouched, _ := f.repo.GetRequestByID(ctx, other.ID)
	if !untouched.Status.IsPending() {
		t.Fatalf("unrelated request changed to %s", untouched.Status)
	}

	rejected, err := f.requests.Reject(ctx, sarah, other.ID)
	if err != nil || !rejected.Status.IsRejected() {
		t.Fatalf("reject = %+v, %v", rejected, err)
	}
	if n := len(pendingFor(t, f, sarah)); n != 1 {
		t.Fatalf("pending after decisions = %d, want 1", n)
	}
}

func TestDecisionOwnership(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	sarah := f.sessionFor(t, store.DemoTutorEmail)
	john := f.sessionFor(t, store.DemoStudentEmail)
	target := pendingFor(t, f, sarah)[0]

	_, err := f.requests.Accept(ctx, john, target.ID)
	wantKind(t, err, apperrors.KindForbidden)

	res, err := f.auth.Login(ctx, LoginInput{Email: "another.tutor@school.in", Password: "whatever"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if _, err := f.tutors.EnsureProfile(ctx, res.Session); err != nil {
		t.Fatalf("ensure profile: %v", err)
	}
	_, err = f.requests.Accept(ctx, res.Session, target.ID)
	wantKind(t, err, apperrors.KindForbidden)

	_, err = f.requests.Accept(ctx, sarah, "missing")
	wantKind(t, err, apperrors.KindNotFound)
}

func TestConcurrentDecisionsOneWinner(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	sarah := f.sessionFor(t, store.DemoTutorEmail)
	target := pendingFor(t, f, sarah)[0]

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		wins      int
		conflicts int
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			var err error
			if i%2 == 0 {
				_, err = f.requests.Accept(ctx, sarah, target.ID)
			} else {
				_, err = f.requests.Reject(ctx, sarah, target.ID)
			}
			mu.Lock()
			defer mu.Unlock()
			switch apperrors.KindOf(err) {
			case "":
				wins++
			case apperrors.KindConflict:
				conflicts++
			}
		}(i)
	}
	wg.Wait()
	if wins != 1 || conflicts != 9 {
		t.Fatalf("wins = %d conflicts = %d", wins, conflicts)
	}
}

func TestDemoLoginResolvesRole(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	res, err := f.auth.Login(ctx, LoginInput{Email: "tutor@demo.com", Password: "anything"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if res.Session.User.Role != models.RoleTutor || res.Redirect != "/tutor-dashboard" {
		t.Fatalf("role = %s redirect = %s", res.Session.User.Role, res.Redirect)
	}
	if res.Session.UserID() != store.DemoTutorUserID {
		t.Fatalf("known email should resolve to the stored user, got %s", res.Session.UserID())
	}
	if res.AccessToken == "" || res.RefreshToken == "" || res.ExpiresIn != 60 {
		t.Fatalf("tokens = %+v", res)
	}

	res, err = f.auth.Login(ctx, LoginInput{Email: "student@demo.com", Password: "anything"})
	if err != nil || res.Redirect != "/student-dashboard" {
		t.Fatalf("student login = %+v, %v", res, err)
	}

	res, err = f.auth.Login(ctx, LoginInput{Email: "maths.tutor@new.in", Password: "anything"})
	if err != nil {
		t.Fatalf("new tutor login: %v", err)
	}
	if res.Session.User.Role != models.RoleTutor || res.Session.User.Name != "maths.tutor" {
		t.Fatalf("fabricated user = %+v", res.Session.User)
	}
	again, err := f.auth.Login(ctx, LoginInput{Email: "MATHS.TUTOR@new.in", Password: "other1"})
	if err != nil || again.Session.UserID() != res.Session.UserID() {
		t.Fatalf("second login should reuse the account: %+v, %v", again, err)
	}
}

func TestLoginValidation(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	_, err := f.auth.Login(context.Background(), LoginInput{Email: "nope", Password: "123"})
	wantKind(t, err, apperrors.KindInvalidInput)
	fields := apperrors.FieldsOf(err)
	if fields["email"] != "Invalid email address" || fields["password"] != "Password must be at least 6 characters" {
		t.Fatalf("fields = %v", fields)
	}
}

func TestPasswordModeLogin(t *testing.T) {
	t.Parallel()

	f := newFixture(t, func(c *config.Config) { c.AuthMode = config.AuthModePassword })
	ctx := context.Background()

	if _, err := f.auth.Login(ctx, LoginInput{Email: "student@demo.com", Password: "password123"}); err != nil {
		t.Fatalf("login: %v", err)
	}
	_, err := f.auth.Login(ctx, LoginInput{Email: "student@demo.com", Password: "wrong-password"})
	wantKind(t, err, apperrors.KindUnauthorized)
	_, err = f.auth.Login(ctx, LoginInput{Email: "stranger@demo.com", Password: "password123"})
	wantKind(t, err, apperrors.KindUnauthorized)
}

func TestRegister(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	in := RegisterInput{
		Name:            "Asha Verma",
		Email:           "asha@example.com",
		Phone:           "9123456780",
		Password:        "secret1",
		ConfirmPassword: "secret1",
		Role:            "Tutor",
	}
	res, err := f.auth.Register(ctx, in)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if res.Session.User.Role != models.RoleTutor || res.Redirect != "/tutor-dashboard" {
		t.Fatalf("result = %+v", res)
	}
	stored, _ := f.repo.GetUserByEmail(ctx, "asha@example.com")
	if ok, _ := utils.ComparePasswordAndHash("secret1", stored.PasswordHash); !ok {
		t.Fatal("password not stored as a hash")
	}

	_, err = f.auth.Register(ctx, in)
	wantKind(t, err, apperrors.KindConflict)

	bad := in
	bad.Email = "new@example.com"
	bad.Phone = "12345"
	bad.ConfirmPassword = "secret2"
	bad.Name = "A"
	_, err = f.auth.Register(ctx, bad)
	wantKind(t, err, apperrors.KindInvalidInput)
	fields := apperrors.FieldsOf(err)
	want := map[string]string{
		"phone":            "Invalid phone number (10 digits required)",
		"confirm_password": "Passwords do not match",
		"name":             "Name must be at least 2 characters",
	}
	for k, v := range want {
		if fields[k] != v {
			t.Fatalf("fields[%s] = %q, want %q", k, fields[k], v)
		}
	}
}

func TestRefreshAndLogout(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	res, err := f.auth.Login(ctx, LoginInput{Email: "student@demo.com", Password: "anything"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	next, err := f.auth.Refresh(ctx, res.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if next.RefreshToken == res.RefreshToken || next.Session.UserID() != store.DemoStudentID {
		t.Fatalf("refresh = %+v", next)
	}
	_, err = f.auth.Refresh(ctx, res.RefreshToken)
	wantKind(t, err, apperrors.KindUnauthorized)

	out, err := f.auth.Logout(ctx, next.Session, next.RefreshToken)
	if err != nil || out.Authenticated() {
		t.Fatalf("logout = %+v, %v", out, err)
	}
	_, err = f.auth.Refresh(ctx, next.RefreshToken)
	wantKind(t, err, apperrors.KindUnauthorized)
}

type fakeGoogle struct {
	id  *GoogleIdentity
	err error
}

func (g fakeGoogle) Exchange(context.Context, string) (*GoogleIdentity, error) {
	return g.id, g.err
}

func TestGoogleSignIn(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	_, err := f.auth.Google(ctx, "code")
	wantKind(t, err, apperrors.KindUnavailable)

	f.auth.google = fakeGoogle{id: &GoogleIdentity{Email: "g.tutor@gmail.com", Name: "G User", Picture: "https://img.test/p.png"}}
	res, err := f.auth.Google(ctx, "code")
	if err != nil {
		t.Fatalf("google: %v", err)
	}
	// Google accounts start as students even when the address says tutor
	if res.Session.User.Role != models.RoleStudent || res.Session.User.AvatarURL == "" {
		t.Fatalf("user = %+v", res.Session.User)
	}

	f.auth.google = fakeGoogle{err: errors.New("bad code")}
	_, err = f.auth.Google(ctx, "code")
	wantKind(t, err, apperrors.KindUnauthorized)
}

func TestDashboards(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	sd, err := f.dashboard.Student(ctx, f.sessionFor(t, store.DemoStudentEmail))
	if err != nil {
		t.Fatalf("student dashboard: %v", err)
	}
	if sd.Counts != (StatusCounts{Total: 2, Pending: 1, Accepted: 1}) {
		t.Fatalf("counts = %+v", sd.Counts)
	}
	if sd.Requests[0].RequestDate != "2024-01-15" {
		t.Fatalf("requests not newest first: %s", sd.Requests[0].RequestDate)
	}

	td, err := f.dashboard.Tutor(ctx, f.sessionFor(t, store.DemoTutorEmail))
	if err != nil {
		t.Fatalf("tutor dashboard: %v", err)
	}
	if td.Stats.PendingRequests != 3 || td.Stats.TotalStudents != 120 || td.Stats.HourlyRate != 800 {
		t.Fatalf("stats = %+v", td.Stats)
	}
	if len(td.Students) != 1 || td.Students[0].Name != "Amit Kumar" {
		t.Fatalf("students = %+v", td.Students)
	}

	_, err = f.dashboard.Tutor(ctx, f.sessionFor(t, store.DemoStudentEmail))
	wantKind(t, err, apperrors.KindForbidden)
	_, err = f.dashboard.Student(ctx, session.Session{})
	wantKind(t, err, apperrors.KindUnauthorized)
}

func TestNewTutorGetsEmptyProfile(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	res, err := f.auth.Login(ctx, LoginInput{Email: "fresh.tutor@demo.com", Password: "anything"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	td, err := f.dashboard.Tutor(ctx, res.Session)
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if td.Profile.Name != "fresh.tutor" || td.Profile.UserID != res.Session.UserID() {
		t.Fatalf("profile = %+v", td.Profile)
	}
	again, _ := f.dashboard.Tutor(ctx, res.Session)
	if again.Profile.ID != td.Profile.ID {
		t.Fatal("second visit created another profile")
	}
	all, _ := f.repo.ListTutors(ctx)
	if len(all) != 4 {
		t.Fatalf("tutors = %d, want 4", len(all))
	}
}

func TestUpdateProfileKeepsRatingAndReviews(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	sarah := f.sessionFor(t, store.DemoTutorEmail)

	got, err := f.tutors.UpdateProfile(ctx, sarah, ProfileInput{
		Name:       "Dr. Sarah J.",
		HourlyRate: 950,
		Location:   "Delhi, Sector 14",
		Subjects:   []string{"Mathematics", "Computer Science"},
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Name != "Dr. Sarah J." || got.HourlyRate != 950 || got.Rating != 4.9 || len(got.Reviews) != 3 {
		t.Fatalf("profile = %+v", got)
	}
	if len(got.Classes) != 4 {
		t.Fatalf("classes should be kept when omitted: %v", got.Classes)
	}

	_, err = f.tutors.UpdateProfile(ctx, sarah, ProfileInput{Name: "Dr. Sarah", Subjects: []string{"Alchemy"}, HourlyRate: -1})
	wantKind(t, err, apperrors.KindInvalidInput)
	fields := apperrors.FieldsOf(err)
	if fields["subjects"] == "" || fields["hourly_rate"] == "" {
		t.Fatalf("fields = %v", fields)
	}

	_, err = f.tutors.UpdateProfile(ctx, f.sessionFor(t, store.DemoStudentEmail), ProfileInput{Name: "Nope"})
	wantKind(t, err, apperrors.KindForbidden)
}

func TestAvatarUploadAndClear(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	sarah := f.sessionFor(t, store.DemoTutorEmail)

	_, err := f.tutors.SetAvatar(ctx, sarah, "notes.txt", strings.NewReader("x"))
	wantKind(t, err, apperrors.KindInvalidInput)

	got, err := f.tutors.SetAvatar(ctx, sarah, "me.png", strings.NewReader("png"))
	if err != nil {
		t.Fatalf("set avatar: %v", err)
	}
	if !strings.HasPrefix(got.ProfilePictureURL, "http://files.test/uploads/avatars/1/") {
		t.Fatalf("avatar url = %q", got.ProfilePictureURL)
	}
	raw, _ := f.repo.GetTutorByID(ctx, "1")
	if strings.HasPrefix(raw.ProfilePictureURL, "http") {
		t.Fatalf("stored value should be a storage key, got %q", raw.ProfilePictureURL)
	}

	got, err = f.tutors.ClearAvatar(ctx, sarah)
	if err != nil || got.ProfilePictureURL != "" {
		t.Fatalf("clear = %+v, %v", got, err)
	}
}

func TestSearchMath(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	got, err := f.tutors.Search(context.Background(), search.Criteria{Subject: "Math"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(got) != 1 || got[0].Name != "Dr. Sarah Johnson" {
		t.Fatalf("got %d tutors", len(got))
	}
}
