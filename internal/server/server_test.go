package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"anoa.com/softdesk/internal/config"
	commonDto "anoa.com/softdesk/internal/dto"
	"anoa.com/softdesk/internal/entity"
	"anoa.com/softdesk/internal/memstore"
	commentDto "anoa.com/softdesk/internal/modules/comment/dto"
	issueDto "anoa.com/softdesk/internal/modules/issue/dto"
	projectDto "anoa.com/softdesk/internal/modules/project/dto"
	userDto "anoa.com/softdesk/internal/modules/user/dto"
	"anoa.com/softdesk/pkg/logger"
	"anoa.com/softdesk/pkg/validator"
	"github.com/gin-gonic/gin"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	logger.Log.SetOutput(io.Discard)
	validator.Setup()
	os.Exit(m.Run())
}

type api struct {
	t     *testing.T
	h     http.Handler
	store *memstore.Store
}

type account struct {
	token string
	id    uint
}

func newAPI(t *testing.T) *api {
	t.Helper()
	cfg := &config.Config{
		AllowedOrigins: "http://localhost:3000",
		JWTSecret:      "test-secret",
		JWTTTL:         time.Hour,
	}
	store := memstore.New()
	srv := NewServer(cfg, NewMemoryRepositories(store), nil, nil)
	return &api{t: t, h: srv.Handler(), store: store}
}

func (a *api) do(method, path, token string, body any) *httptest.ResponseRecorder {
	a.t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			a.t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.h.ServeHTTP(w, req)
	return w
}

// expect asserts the status and decodes the body into out when out is non-nil.
func (a *api) expect(w *httptest.ResponseRecorder, status int, out any) {
	a.t.Helper()
	if w.Code != status {
		a.t.Fatalf("status = %d, want %d; body %s", w.Code, status, w.Body.String())
	}
	if out != nil {
		if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
			a.t.Fatalf("decode %s: %v", w.Body.String(), err)
		}
	}
}

func (a *api) login(email string) string {
	a.t.Helper()
	var auth userDto.AuthResponse
	a.expect(a.do(http.MethodPost, "/api/auth/login", "", gin.H{
		"email":    email,
		"password": "correct-horse",
	}), http.StatusOK, &auth)
	return auth.AccessToken
}

func (a *api) signup(name string) account {
	a.t.Helper()
	email := name + "@example.com"

	var user entity.User
	a.expect(a.do(http.MethodPost, "/api/auth/signup", "", gin.H{
		"username":   name,
		"email":      email,
		"password":   "correct-horse",
		"first_name": name,
		"last_name":  "Tester",
	}), http.StatusCreated, &user)

	return account{token: a.login(email), id: user.ID}
}

func (a *api) createProject(owner account, title string) projectDto.ProjectResponse {
	a.t.Helper()
	var p projectDto.ProjectResponse
	a.expect(a.do(http.MethodPost, "/api/projects", owner.token, gin.H{
		"title":       title,
		"description": "tracker for " + title,
		"type":        "back-end",
	}), http.StatusCreated, &p)
	return p
}

func (a *api) enroll(owner account, projectID uint, user account) commonDto.ContributorResponse {
	a.t.Helper()
	var c commonDto.ContributorResponse
	a.expect(a.do(http.MethodPost, fmt.Sprintf("/api/projects/%d/users", projectID), owner.token, gin.H{
		"user": user.id,
	}), http.StatusCreated, &c)
	return c
}

func (a *api) fields(w *httptest.ResponseRecorder) map[string]string {
	a.t.Helper()
	var body struct {
		Fields map[string]string `json:"fields"`
	}
	a.expect(w, http.StatusBadRequest, &body)
	return body.Fields
}

func TestAlphaScenario(t *testing.T) {
	a := newAPI(t)
	alice := a.signup("alice")
	bob := a.signup("bob")

	alpha := a.createProject(alice, "Alpha")

	var members []commonDto.ContributorResponse
	a.expect(a.do(http.MethodGet, fmt.Sprintf("/api/projects/%d/users", alpha.ID), alice.token, nil), http.StatusOK, &members)
	if len(members) != 1 || members[0].User.ID != alice.id || members[0].Permission != entity.PermissionCreator {
		t.Fatalf("members after create = %+v", members)
	}

	a.expect(a.do(http.MethodGet, fmt.Sprintf("/api/projects/%d", alpha.ID), bob.token, nil), http.StatusForbidden, nil)

	added := a.enroll(alice, alpha.ID, bob)
	if added.Role != entity.RoleProjectStaff || added.Permission != entity.PermissionContributor {
		t.Errorf("enrolled as %s/%s", added.Role, added.Permission)
	}

	var detail projectDto.ProjectDetailResponse
	a.expect(a.do(http.MethodGet, fmt.Sprintf("/api/projects/%d", alpha.ID), bob.token, nil), http.StatusOK, &detail)
	if detail.Title != "Alpha" {
		t.Errorf("title = %q", detail.Title)
	}
	if detail.Author == nil || detail.Author.User.ID != alice.id {
		t.Errorf("author = %+v", detail.Author)
	}
	found := false
	for _, m := range detail.Members {
		if m.User != nil && m.User.ID == bob.id {
			found = true
		}
	}
	if !found {
		t.Errorf("bob missing from members %+v", detail.Members)
	}

	var mine []projectDto.ProjectResponse
	a.expect(a.do(http.MethodGet, "/api/projects", bob.token, nil), http.StatusOK, &mine)
	if len(mine) != 1 || mine[0].ID != alpha.ID {
		t.Errorf("bob's projects = %+v", mine)
	}
}

func TestContributorLabelsInResponse(t *testing.T) {
	a := newAPI(t)
	alice := a.signup("alice")
	alpha := a.createProject(alice, "Alpha")

	w := a.do(http.MethodGet, fmt.Sprintf("/api/projects/%d/users", alpha.ID), alice.token, nil)
	var raw []map[string]any
	a.expect(w, http.StatusOK, &raw)
	if raw[0]["permission"] != "Créateur" || raw[0]["role"] != "Project manager" {
		t.Errorf("labels = %v / %v", raw[0]["permission"], raw[0]["role"])
	}
}

func TestDeleteCreatorRejected(t *testing.T) {
	a := newAPI(t)
	alice := a.signup("alice")
	bob := a.signup("bob")
	alpha := a.createProject(alice, "Alpha")
	bobRow := a.enroll(alice, alpha.ID, bob)

	var members []commonDto.ContributorResponse
	a.expect(a.do(http.MethodGet, fmt.Sprintf("/api/projects/%d/users", alpha.ID), alice.token, nil), http.StatusOK, &members)
	creatorRow := members[0]

	creatorPath := fmt.Sprintf("/api/projects/%d/users/%d", alpha.ID, creatorRow.ID)
	a.expect(a.do(http.MethodDelete, creatorPath, alice.token, nil), http.StatusForbidden, nil)
	a.expect(a.do(http.MethodDelete, creatorPath, bob.token, nil), http.StatusForbidden, nil)

	bobPath := fmt.Sprintf("/api/projects/%d/users/%d", alpha.ID, bobRow.ID)
	a.expect(a.do(http.MethodDelete, bobPath, bob.token, nil), http.StatusForbidden, nil)
	a.expect(a.do(http.MethodDelete, bobPath, alice.token, nil), http.StatusNoContent, nil)
	a.expect(a.do(http.MethodGet, bobPath, alice.token, nil), http.StatusNotFound, nil)

	a.expect(a.do(http.MethodGet, fmt.Sprintf("/api/projects/%d/users", alpha.ID), alice.token, nil), http.StatusOK, &members)
	if len(members) != 1 || members[0].Permission != entity.PermissionCreator {
		t.Errorf("members = %+v", members)
	}
}

func TestEnrollmentRules(t *testing.T) {
	a := newAPI(t)
	alice := a.signup("alice")
	bob := a.signup("bob")
	carol := a.signup("carol")
	alpha := a.createProject(alice, "Alpha")
	path := fmt.Sprintf("/api/projects/%d/users", alpha.ID)

	a.enroll(alice, alpha.ID, bob)
	a.expect(a.do(http.MethodPost, path, alice.token, gin.H{"user": bob.id}), http.StatusConflict, nil)
	a.expect(a.do(http.MethodPost, path, alice.token, gin.H{"user": alice.id}), http.StatusConflict, nil)

	a.expect(a.do(http.MethodPost, path, bob.token, gin.H{"user": carol.id}), http.StatusForbidden, nil)

	if f := a.fields(a.do(http.MethodPost, path, alice.token, gin.H{"user": 999})); f["user"] == "" {
		t.Errorf("unknown user fields = %v", f)
	}
	if f := a.fields(a.do(http.MethodPost, path, alice.token, gin.H{"user": carol.id, "permission": "CREA"})); f["permission"] == "" {
		t.Errorf("creator permission fields = %v", f)
	}
	if f := a.fields(a.do(http.MethodPost, path, alice.token, gin.H{"user": carol.id, "role": "boss"})); f["role"] == "" {
		t.Errorf("bad role fields = %v", f)
	}

	var c commonDto.ContributorResponse
	a.expect(a.do(http.MethodPost, path, alice.token, gin.H{"user": carol.id, "role": "Project manager"}), http.StatusCreated, &c)
	if c.Role != entity.RoleProjectManager {
		t.Errorf("role = %s", c.Role)
	}

	a.expect(a.do(http.MethodPost, "/api/projects/404/users", alice.token, gin.H{"user": carol.id}), http.StatusNotFound, nil)
}

func TestCreateRejectsOutsiderBeforeBody(t *testing.T) {
	a := newAPI(t)
	alice := a.signup("alice")
	bob := a.signup("bob")
	outsider := a.signup("outsider")
	alpha := a.createProject(alice, "Alpha")
	a.enroll(alice, alpha.ID, bob)

	var issue issueDto.IssueResponse
	a.expect(a.do(http.MethodPost, fmt.Sprintf("/api/projects/%d/issues", alpha.ID), alice.token, gin.H{
		"title":       "Bug1",
		"description": "login page crashes",
	}), http.StatusCreated, &issue)

	bad := gin.H{"user": "nobody", "title": 7, "description": false}
	cases := []struct {
		name  string
		token string
		path  string
		want  int
	}{
		{"contributor by member", bob.token, fmt.Sprintf("/api/projects/%d/users", alpha.ID), http.StatusForbidden},
		{"contributor by outsider", outsider.token, fmt.Sprintf("/api/projects/%d/users", alpha.ID), http.StatusForbidden},
		{"contributor on missing project", alice.token, "/api/projects/404/users", http.StatusNotFound},
		{"issue by outsider", outsider.token, fmt.Sprintf("/api/projects/%d/issues", alpha.ID), http.StatusForbidden},
		{"comment by outsider", outsider.token, fmt.Sprintf("/api/projects/%d/issues/%d/comments", alpha.ID, issue.ID), http.StatusForbidden},
		{"contributor by creator", alice.token, fmt.Sprintf("/api/projects/%d/users", alpha.ID), http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if w := a.do(http.MethodPost, tc.path, tc.token, bad); w.Code != tc.want {
				t.Errorf("status = %d, want %d; body %s", w.Code, tc.want, w.Body.String())
			}
		})
	}
}

func TestIssueAuthorAndAssignee(t *testing.T) {
	a := newAPI(t)
	alice := a.signup("alice")
	bob := a.signup("bob")
	outsider := a.signup("outsider")
	alpha := a.createProject(alice, "Alpha")
	a.enroll(alice, alpha.ID, bob)
	path := fmt.Sprintf("/api/projects/%d/issues", alpha.ID)

	w := a.do(http.MethodPost, path, bob.token, gin.H{
		"title":       "Bug1",
		"description": "login page crashes",
		"author":      alice.id,
		"project":     999,
	})
	var issue issueDto.IssueResponse
	a.expect(w, http.StatusCreated, &issue)
	if issue.Author == nil || issue.Author.ID != bob.id {
		t.Errorf("author = %+v, want bob", issue.Author)
	}
	if issue.Assignee == nil || issue.Assignee.ID != bob.id {
		t.Errorf("assignee = %+v, want bob", issue.Assignee)
	}
	if issue.Project != alpha.ID {
		t.Errorf("project = %d", issue.Project)
	}
	if issue.Tag != entity.TagBug || issue.Priority != entity.PriorityLow || issue.Status != entity.StatusTodo {
		t.Errorf("defaults = %s/%s/%s", issue.Tag, issue.Priority, issue.Status)
	}

	var raw map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &raw)
	if _, err := time.Parse(entity.TimeLayout, fmt.Sprint(raw["created_time"])); err != nil {
		t.Errorf("created_time %v: %v", raw["created_time"], err)
	}
	if raw["priority"] != "FAIBLE" || raw["status"] != "À faire" {
		t.Errorf("labels = %v / %v", raw["priority"], raw["status"])
	}

	if f := a.fields(a.do(http.MethodPost, path, bob.token, gin.H{
		"title": "Bug2", "description": "d", "assignee": outsider.id,
	})); f["assignee"] == "" {
		t.Errorf("outsider assignee fields = %v", f)
	}
	if f := a.fields(a.do(http.MethodPost, path, bob.token, gin.H{
		"title": "Bug1", "description": "again",
	})); f["title"] == "" {
		t.Errorf("duplicate title fields = %v", f)
	}
	a.expect(a.do(http.MethodPost, path, outsider.token, gin.H{"title": "Bug3", "description": "d"}), http.StatusForbidden, nil)

	issuePath := fmt.Sprintf("%s/%d", path, issue.ID)
	a.expect(a.do(http.MethodPatch, issuePath, alice.token, gin.H{"status": "DON"}), http.StatusForbidden, nil)
	a.expect(a.do(http.MethodGet, issuePath, alice.token, nil), http.StatusOK, nil)

	var patched issueDto.IssueResponse
	a.expect(a.do(http.MethodPatch, issuePath, bob.token, gin.H{"status": "En cours", "assignee": alice.id}), http.StatusOK, &patched)
	if patched.Status != entity.StatusDoing {
		t.Errorf("status = %s", patched.Status)
	}
	if patched.Assignee == nil || patched.Assignee.ID != alice.id || patched.Author.ID != bob.id {
		t.Errorf("after patch author=%+v assignee=%+v", patched.Author, patched.Assignee)
	}

	// alice is now the assignee and may edit.
	var replaced issueDto.IssueResponse
	a.expect(a.do(http.MethodPut, issuePath, alice.token, gin.H{
		"title": "Bug1 renamed", "description": "d", "tag": "TSK", "priority": "SUP", "status": "DON",
	}), http.StatusOK, &replaced)
	if replaced.Assignee != nil || replaced.Title != "Bug1 renamed" || replaced.Priority != entity.PriorityHigh {
		t.Errorf("after put = %+v", replaced)
	}

	a.expect(a.do(http.MethodDelete, issuePath, alice.token, nil), http.StatusForbidden, nil)
	a.expect(a.do(http.MethodDelete, issuePath, bob.token, nil), http.StatusNoContent, nil)
	a.expect(a.do(http.MethodGet, issuePath, bob.token, nil), http.StatusNotFound, nil)
}

func TestCommentScoping(t *testing.T) {
	a := newAPI(t)
	alice := a.signup("alice")
	bob := a.signup("bob")
	alpha := a.createProject(alice, "Alpha")
	beta := a.createProject(alice, "Beta")
	a.enroll(alice, alpha.ID, bob)

	var issue issueDto.IssueResponse
	a.expect(a.do(http.MethodPost, fmt.Sprintf("/api/projects/%d/issues", alpha.ID), alice.token, gin.H{
		"title": "Crash", "description": "on save",
	}), http.StatusCreated, &issue)

	wrong := fmt.Sprintf("/api/projects/%d/issues/%d/comments", beta.ID, issue.ID)
	a.expect(a.do(http.MethodPost, wrong, alice.token, gin.H{"description": "misplaced"}), http.StatusNotFound, nil)
	a.expect(a.do(http.MethodGet, wrong, alice.token, nil), http.StatusNotFound, nil)

	path := fmt.Sprintf("/api/projects/%d/issues/%d/comments", alpha.ID, issue.ID)
	var comment commentDto.CommentResponse
	a.expect(a.do(http.MethodPost, path, bob.token, gin.H{"description": "seen it too", "author": alice.id}), http.StatusCreated, &comment)
	if comment.Author == nil || comment.Author.ID != bob.id {
		t.Errorf("author = %+v", comment.Author)
	}
	if comment.Issue == nil || *comment.Issue != issue.ID {
		t.Errorf("issue = %v", comment.Issue)
	}

	commentPath := fmt.Sprintf("%s/%d", path, comment.ID)
	a.expect(a.do(http.MethodPut, commentPath, alice.token, gin.H{"description": "hijack"}), http.StatusForbidden, nil)
	a.expect(a.do(http.MethodDelete, commentPath, alice.token, nil), http.StatusForbidden, nil)

	var updated commentDto.CommentResponse
	a.expect(a.do(http.MethodPatch, commentPath, bob.token, gin.H{"description": "edited"}), http.StatusOK, &updated)
	if updated.Description != "edited" {
		t.Errorf("description = %q", updated.Description)
	}

	var list []commentDto.CommentResponse
	a.expect(a.do(http.MethodGet, path, alice.token, nil), http.StatusOK, &list)
	if len(list) != 1 {
		t.Errorf("comments = %d", len(list))
	}

	a.expect(a.do(http.MethodDelete, commentPath, bob.token, nil), http.StatusNoContent, nil)
	a.expect(a.do(http.MethodGet, commentPath, bob.token, nil), http.StatusNotFound, nil)
}

func TestMalformedIDsAreNotFound(t *testing.T) {
	a := newAPI(t)
	alice := a.signup("alice")
	alpha := a.createProject(alice, "Alpha")

	for _, path := range []string{
		"/api/projects/abc",
		"/api/projects/0",
		"/api/projects/9223372036854775808",
		"/api/projects/18446744073709551615",
		fmt.Sprintf("/api/projects/%d/issues/99999999999999999999", alpha.ID),
		fmt.Sprintf("/api/projects/%d/issues/xyz", alpha.ID),
		fmt.Sprintf("/api/projects/%d/users/-1", alpha.ID),
		fmt.Sprintf("/api/projects/%d/issues/1/comments/nope", alpha.ID),
		"/api/projects/999",
	} {
		if w := a.do(http.MethodGet, path, alice.token, nil); w.Code != http.StatusNotFound {
			t.Errorf("GET %s = %d, want 404", path, w.Code)
		}
	}
}

func TestProjectLifecycle(t *testing.T) {
	a := newAPI(t)
	alice := a.signup("alice")
	bob := a.signup("bob")
	alpha := a.createProject(alice, "Alpha")
	a.enroll(alice, alpha.ID, bob)
	path := fmt.Sprintf("/api/projects/%d", alpha.ID)

	if f := a.fields(a.do(http.MethodPost, "/api/projects", alice.token, gin.H{})); f["title"] == "" || f["type"] == "" {
		t.Errorf("empty body fields = %v", f)
	}
	if f := a.fields(a.do(http.MethodPost, "/api/projects", bob.token, gin.H{
		"title": "Alpha", "description": "d", "type": "t",
	})); f["title"] == "" {
		t.Errorf("duplicate title fields = %v", f)
	}

	a.expect(a.do(http.MethodPatch, path, bob.token, gin.H{"type": "front-end"}), http.StatusForbidden, nil)

	var patched projectDto.ProjectResponse
	a.expect(a.do(http.MethodPatch, path, alice.token, gin.H{"type": "front-end"}), http.StatusOK, &patched)
	if patched.Type != "front-end" || patched.Title != "Alpha" {
		t.Errorf("patched = %+v", patched)
	}

	var replaced projectDto.ProjectResponse
	a.expect(a.do(http.MethodPut, path, alice.token, gin.H{
		"title": "Alpha 2", "description": "new", "type": "iOS",
	}), http.StatusOK, &replaced)
	if replaced.Title != "Alpha 2" {
		t.Errorf("replaced = %+v", replaced)
	}

	a.expect(a.do(http.MethodDelete, path, bob.token, nil), http.StatusForbidden, nil)
	a.expect(a.do(http.MethodDelete, path, alice.token, nil), http.StatusNoContent, nil)
	a.expect(a.do(http.MethodGet, path, alice.token, nil), http.StatusNotFound, nil)

	var mine []projectDto.ProjectResponse
	a.expect(a.do(http.MethodGet, "/api/projects", bob.token, nil), http.StatusOK, &mine)
	if len(mine) != 0 {
		t.Errorf("bob still sees %+v", mine)
	}
}

func TestIssueSearch(t *testing.T) {
	a := newAPI(t)
	alice := a.signup("alice")
	outsider := a.signup("outsider")
	alpha := a.createProject(alice, "Alpha")
	path := fmt.Sprintf("/api/projects/%d/issues", alpha.ID)

	for _, title := range []string{"Crash on save", "Slow search", "crash at login"} {
		a.expect(a.do(http.MethodPost, path, alice.token, gin.H{"title": title, "description": "d"}), http.StatusCreated, nil)
	}

	var hits []issueDto.IssueResponse
	a.expect(a.do(http.MethodGet, path+"/search?q=CRASH", alice.token, nil), http.StatusOK, &hits)
	if len(hits) != 2 {
		t.Errorf("hits = %d, want 2", len(hits))
	}

	a.expect(a.do(http.MethodGet, path+"/search?q=crash&limit=1", alice.token, nil), http.StatusOK, &hits)
	if len(hits) != 1 {
		t.Errorf("limited hits = %d, want 1", len(hits))
	}

	a.fields(a.do(http.MethodGet, path+"/search", alice.token, nil))
	a.expect(a.do(http.MethodGet, path+"/search?q=crash", outsider.token, nil), http.StatusForbidden, nil)
}

func TestLogout(t *testing.T) {
	a := newAPI(t)
	alice := a.signup("alice")
	second := a.login("alice@example.com")

	a.expect(a.do(http.MethodPost, "/api/auth/logout", alice.token, nil), http.StatusNoContent, nil)
	a.expect(a.do(http.MethodGet, "/api/users/me", alice.token, nil), http.StatusUnauthorized, nil)

	var me entity.User
	a.expect(a.do(http.MethodGet, "/api/users/me", second, nil), http.StatusOK, &me)
	if me.ID != alice.id || me.Username != "alice" {
		t.Errorf("me = %+v", me)
	}

	a.expect(a.do(http.MethodPost, "/api/auth/logout-all", second, nil), http.StatusNoContent, nil)
	a.expect(a.do(http.MethodGet, "/api/users/me", second, nil), http.StatusUnauthorized, nil)

	fresh := a.login("alice@example.com")
	a.expect(a.do(http.MethodGet, "/api/users/me", fresh, nil), http.StatusOK, nil)
}

func TestAuthentication(t *testing.T) {
	a := newAPI(t)
	a.signup("alice")

	a.expect(a.do(http.MethodGet, "/api/projects", "", nil), http.StatusUnauthorized, nil)
	a.expect(a.do(http.MethodPost, "/api/auth/login", "", gin.H{
		"email": "alice@example.com", "password": "wrong-password",
	}), http.StatusUnauthorized, nil)

	if f := a.fields(a.do(http.MethodPost, "/api/auth/signup", "", gin.H{
		"username": "alice", "email": "other@example.com", "password": "correct-horse",
	})); f["username"] == "" {
		t.Errorf("duplicate username fields = %v", f)
	}
	if f := a.fields(a.do(http.MethodPost, "/api/auth/signup", "", gin.H{
		"username": "dave", "email": "not-an-email", "password": "short",
	})); f["email"] == "" || f["password"] == "" {
		t.Errorf("invalid signup fields = %v", f)
	}
}

func TestDeleteAccount(t *testing.T) {
	a := newAPI(t)
	alice := a.signup("alice")
	bob := a.signup("bob")
	alpha := a.createProject(alice, "Alpha")
	a.enroll(alice, alpha.ID, bob)

	var issue issueDto.IssueResponse
	a.expect(a.do(http.MethodPost, fmt.Sprintf("/api/projects/%d/issues", alpha.ID), bob.token, gin.H{
		"title": "Crash", "description": "d",
	}), http.StatusCreated, &issue)

	a.expect(a.do(http.MethodDelete, "/api/users/me", alice.token, nil), http.StatusConflict, nil)
	a.expect(a.do(http.MethodDelete, "/api/users/me", bob.token, nil), http.StatusNoContent, nil)
	a.expect(a.do(http.MethodGet, "/api/users/me", bob.token, nil), http.StatusUnauthorized, nil)

	var after issueDto.IssueResponse
	a.expect(a.do(http.MethodGet, fmt.Sprintf("/api/projects/%d/issues/%d", alpha.ID, issue.ID), alice.token, nil), http.StatusOK, &after)
	if after.Author != nil || after.Assignee != nil {
		t.Errorf("deleted user still referenced: author=%+v assignee=%+v", after.Author, after.Assignee)
	}

	var members []commonDto.ContributorResponse
	a.expect(a.do(http.MethodGet, fmt.Sprintf("/api/projects/%d/users", alpha.ID), alice.token, nil), http.StatusOK, &members)
	if len(members) != 1 {
		t.Errorf("members = %+v", members)
	}
}

func TestProjectStats(t *testing.T) {
	a := newAPI(t)
	alice := a.signup("alice")
	bob := a.signup("bob")
	outsider := a.signup("outsider")
	alpha := a.createProject(alice, "Alpha")
	a.enroll(alice, alpha.ID, bob)
	path := fmt.Sprintf("/api/projects/%d", alpha.ID)

	var issue issueDto.IssueResponse
	a.expect(a.do(http.MethodPost, path+"/issues", alice.token, gin.H{
		"title": "Crash", "description": "d", "priority": "SUP",
	}), http.StatusCreated, &issue)
	a.expect(a.do(http.MethodPost, path+"/issues", bob.token, gin.H{
		"title": "Docs", "description": "d", "tag": "TSK", "status": "DON",
	}), http.StatusCreated, nil)
	a.expect(a.do(http.MethodPut, fmt.Sprintf("%s/issues/%d", path, issue.ID), alice.token, gin.H{
		"title": "Crash", "description": "d", "tag": "BUG", "priority": "SUP", "status": "DOI",
	}), http.StatusOK, nil)

	var stats struct {
		Contributors int              `json:"contributors"`
		Issues       int              `json:"issues"`
		Unassigned   int              `json:"unassigned"`
		ByStatus     map[string]int64 `json:"by_status"`
		ByPriority   map[string]int64 `json:"by_priority"`
		ByTag        map[string]int64 `json:"by_tag"`
	}
	a.expect(a.do(http.MethodGet, path+"/stats", bob.token, nil), http.StatusOK, &stats)

	if stats.Contributors != 2 || stats.Issues != 2 || stats.Unassigned != 1 {
		t.Errorf("stats = %+v", stats)
	}
	if stats.ByStatus["En cours"] != 1 || stats.ByStatus["Terminé"] != 1 || stats.ByStatus["À faire"] != 0 {
		t.Errorf("by_status = %v", stats.ByStatus)
	}
	if stats.ByPriority["ÉLEVÉE"] != 1 || stats.ByTag["TÂCHE"] != 1 {
		t.Errorf("by_priority = %v by_tag = %v", stats.ByPriority, stats.ByTag)
	}

	a.expect(a.do(http.MethodGet, path+"/stats", outsider.token, nil), http.StatusForbidden, nil)
	a.expect(a.do(http.MethodGet, "/api/projects/999/stats", alice.token, nil), http.StatusNotFound, nil)
}
