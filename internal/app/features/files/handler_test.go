package files

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fileharbor/fileharbor/internal/app/store/content"
	filestore "github.com/fileharbor/fileharbor/internal/app/store/files"
	"github.com/fileharbor/fileharbor/internal/app/system/auth"
	"github.com/fileharbor/fileharbor/internal/domain/models"
	"github.com/fileharbor/fileharbor/internal/testutil"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type queueRecorder struct {
	published []primitive.ObjectID
	err       error
}

func (q *queueRecorder) Publish(_ context.Context, _, fileID primitive.ObjectID) error {
	if q.err != nil {
		return q.err
	}
	q.published = append(q.published, fileID)
	return nil
}

type testEnv struct {
	router *chi.Mux
	files  *filestore.Store
	blobs  *content.Store
	queue  *queueRecorder
	userID primitive.ObjectID
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testutil.SetupTestDB(t)
	files := filestore.New(db)
	blobs := content.New(t.TempDir())
	if err := blobs.EnsureRoot(); err != nil {
		t.Fatalf("EnsureRoot() error = %v", err)
	}

	queue := &queueRecorder{}
	h := NewHandler(files, blobs, queue, zap.NewNop())

	r := chi.NewRouter()
	r.Mount("/files", Routes(h))

	return &testEnv{
		router: r,
		files:  files,
		blobs:  blobs,
		queue:  queue,
		userID: primitive.NewObjectID(),
	}
}

// do sends a request as the env's user. An empty token leaves the request
// unauthenticated.
func (e *testEnv) do(t *testing.T, method, target string, body any, asUser *primitive.ObjectID) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode request body: %v", err)
		}
	}

	req := httptest.NewRequest(method, target, &buf)
	if asUser != nil {
		req.Header.Set(auth.TokenHeader, "test-token")
		req = auth.WithTestIdentity(req, &auth.Identity{ID: *asUser, Email: "bob@dylan.com"})
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&m); err != nil {
		t.Fatalf("decode response body: %v (body %q)", err, rec.Body.String())
	}
	return m
}

const helloB64 = "SGVsbG8gV2Vic3RhY2shCg==" // "Hello Webstack!\n"

func TestCreate_RequiresToken(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/files", map[string]any{"name": "x", "type": "folder"}, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
	if got := decodeBody(t, rec)["error"]; got != "Unauthorized" {
		t.Errorf("error = %v, want Unauthorized", got)
	}
}

func TestCreate_Validations(t *testing.T) {
	env := newTestEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	notAFolder, err := env.files.Create(ctx, models.File{
		UserID:    env.userID,
		Name:      "plain.txt",
		Type:      models.TypeFile,
		LocalPath: "/nope",
	})
	if err != nil {
		t.Fatalf("seed file: %v", err)
	}

	cases := []struct {
		name    string
		body    map[string]any
		wantErr string
	}{
		{"missing name", map[string]any{"type": "file", "data": helloB64}, "Missing name"},
		{"missing type", map[string]any{"name": "a.txt", "data": helloB64}, "Missing type"},
		{"bad type", map[string]any{"name": "a.txt", "type": "movie", "data": helloB64}, "Missing type"},
		{"missing data", map[string]any{"name": "a.txt", "type": "file"}, "Missing data"},
		{"bad base64", map[string]any{"name": "a.txt", "type": "file", "data": "!!!not-base64!!!"}, "Missing data"},
		{"parent not found", map[string]any{"name": "a.txt", "type": "file", "data": helloB64, "parentId": primitive.NewObjectID().Hex()}, "Parent not found"},
		{"parent bad hex", map[string]any{"name": "a.txt", "type": "file", "data": helloB64, "parentId": "zz"}, "Parent not found"},
		{"parent not a folder", map[string]any{"name": "a.txt", "type": "file", "data": helloB64, "parentId": notAFolder.ID.Hex()}, "Parent is not a folder"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, "/files", tc.body, &env.userID)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
			if got := decodeBody(t, rec)["error"]; got != tc.wantErr {
				t.Errorf("error = %v, want %v", got, tc.wantErr)
			}
		})
	}
}

func TestCreate_Folder(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/files", map[string]any{"name": "docs", "type": "folder"}, &env.userID)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201 (body %s)", rec.Code, rec.Body.String())
	}

	body := decodeBody(t, rec)
	if body["name"] != "docs" {
		t.Errorf("name = %v, want docs", body["name"])
	}
	if body["type"] != "folder" {
		t.Errorf("type = %v, want folder", body["type"])
	}
	// Root parent travels as the JSON number 0.
	if body["parentId"] != float64(0) {
		t.Errorf("parentId = %v (%T), want 0", body["parentId"], body["parentId"])
	}
	if body["isPublic"] != false {
		t.Errorf("isPublic = %v, want false", body["isPublic"])
	}
	if _, ok := body["localPath"]; ok {
		t.Error("localPath must not appear in responses")
	}
	if body["userId"] != env.userID.Hex() {
		t.Errorf("userId = %v, want %v", body["userId"], env.userID.Hex())
	}

	if len(env.queue.published) != 0 {
		t.Error("folder creation must not enqueue thumbnail work")
	}
}

func TestCreate_File_PersistsContent(t *testing.T) {
	env := newTestEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	rec := env.do(t, http.MethodPost, "/files", map[string]any{
		"name": "hello.txt", "type": "file", "data": helloB64,
	}, &env.userID)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201 (body %s)", rec.Code, rec.Body.String())
	}

	id, err := primitive.ObjectIDFromHex(decodeBody(t, rec)["id"].(string))
	if err != nil {
		t.Fatalf("response id is not an ObjectID hex: %v", err)
	}

	stored, err := env.files.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("stored record lookup: %v", err)
	}
	if stored.LocalPath == "" {
		t.Fatal("stored record has no content address")
	}

	data, err := env.blobs.Read(ctx, stored.LocalPath)
	if err != nil {
		t.Fatalf("read blob: %v", err)
	}
	if string(data) != "Hello Webstack!\n" {
		t.Errorf("blob = %q, want decoded upload", data)
	}

	if len(env.queue.published) != 0 {
		t.Error("plain file must not enqueue thumbnail work")
	}
}

func TestCreate_Image_EnqueuesThumbnails(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/files", map[string]any{
		"name": "pic.png", "type": "image", "data": helloB64,
	}, &env.userID)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", rec.Code)
	}

	if len(env.queue.published) != 1 {
		t.Fatalf("published = %d jobs, want 1", len(env.queue.published))
	}
	if env.queue.published[0].Hex() != decodeBody(t, rec)["id"] {
		t.Error("enqueued file id does not match the created record")
	}
}

func TestCreate_Image_EnqueueFailureStillCreates(t *testing.T) {
	env := newTestEnv(t)
	env.queue.err = fmt.Errorf("queue down")

	rec := env.do(t, http.MethodPost, "/files", map[string]any{
		"name": "pic.png", "type": "image", "data": helloB64,
	}, &env.userID)
	if rec.Code != http.StatusCreated {
		t.Errorf("status = %d, want 201 despite enqueue failure", rec.Code)
	}
}

func TestCreate_InFolder(t *testing.T) {
	env := newTestEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	// The parent may belong to a different user; only its type matters.
	folder, err := env.files.Create(ctx, models.File{
		UserID: primitive.NewObjectID(),
		Name:   "shared",
		Type:   models.TypeFolder,
	})
	if err != nil {
		t.Fatalf("seed folder: %v", err)
	}

	rec := env.do(t, http.MethodPost, "/files", map[string]any{
		"name": "a.txt", "type": "file", "data": helloB64, "parentId": folder.ID.Hex(),
	}, &env.userID)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201 (body %s)", rec.Code, rec.Body.String())
	}
	if got := decodeBody(t, rec)["parentId"]; got != folder.ID.Hex() {
		t.Errorf("parentId = %v, want %v", got, folder.ID.Hex())
	}
}

func TestShow(t *testing.T) {
	env := newTestEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	f, err := env.files.Create(ctx, models.File{
		UserID: env.userID,
		Name:   "docs",
		Type:   models.TypeFolder,
	})
	if err != nil {
		t.Fatalf("seed folder: %v", err)
	}

	rec := env.do(t, http.MethodGet, "/files/"+f.ID.Hex(), nil, &env.userID)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := decodeBody(t, rec)["name"]; got != "docs" {
		t.Errorf("name = %v, want docs", got)
	}

	other := primitive.NewObjectID()
	rec = env.do(t, http.MethodGet, "/files/"+f.ID.Hex(), nil, &other)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status for other user = %d, want 404", rec.Code)
	}

	rec = env.do(t, http.MethodGet, "/files/not-a-hex-id", nil, &env.userID)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status for malformed id = %d, want 404", rec.Code)
	}
}

func TestIndex(t *testing.T) {
	env := newTestEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	rec := env.do(t, http.MethodGet, "/files", nil, &env.userID)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var list []map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&list); err != nil {
		t.Fatalf("empty listing must decode as an array: %v (body %q)", err, rec.Body.String())
	}
	if len(list) != 0 {
		t.Errorf("empty listing length = %d, want 0", len(list))
	}

	for i := 0; i < 3; i++ {
		_, err := env.files.Create(ctx, models.File{
			UserID: env.userID,
			Name:   fmt.Sprintf("f%d", i),
			Type:   models.TypeFolder,
		})
		if err != nil {
			t.Fatalf("seed folder: %v", err)
		}
	}

	rec = env.do(t, http.MethodGet, "/files?parentId=0&page=0", nil, &env.userID)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if err := json.NewDecoder(rec.Body).Decode(&list); err != nil {
		t.Fatalf("decode listing: %v", err)
	}
	if len(list) != 3 {
		t.Errorf("listing length = %d, want 3", len(list))
	}

	rec = env.do(t, http.MethodGet, "/files?page=1", nil, &env.userID)
	if err := json.NewDecoder(rec.Body).Decode(&list); err != nil {
		t.Fatalf("decode listing: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("out-of-range page length = %d, want 0", len(list))
	}
}

func TestPublishUnpublish(t *testing.T) {
	env := newTestEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	f, err := env.files.Create(ctx, models.File{
		UserID: env.userID,
		Name:   "docs",
		Type:   models.TypeFolder,
	})
	if err != nil {
		t.Fatalf("seed folder: %v", err)
	}

	rec := env.do(t, http.MethodPut, "/files/"+f.ID.Hex()+"/publish", nil, &env.userID)
	if rec.Code != http.StatusOK {
		t.Fatalf("publish status = %d, want 200", rec.Code)
	}
	if got := decodeBody(t, rec)["isPublic"]; got != true {
		t.Errorf("isPublic after publish = %v, want true", got)
	}

	rec = env.do(t, http.MethodPut, "/files/"+f.ID.Hex()+"/unpublish", nil, &env.userID)
	if rec.Code != http.StatusOK {
		t.Fatalf("unpublish status = %d, want 200", rec.Code)
	}
	if got := decodeBody(t, rec)["isPublic"]; got != false {
		t.Errorf("isPublic after unpublish = %v, want false", got)
	}

	other := primitive.NewObjectID()
	rec = env.do(t, http.MethodPut, "/files/"+f.ID.Hex()+"/publish", nil, &other)
	if rec.Code != http.StatusNotFound {
		t.Errorf("publish by non-owner status = %d, want 404", rec.Code)
	}
}

func TestData_AccessRules(t *testing.T) {
	env := newTestEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	path := env.blobs.NewPath()
	if err := env.blobs.Write(ctx, path, []byte("hello")); err != nil {
		t.Fatalf("write blob: %v", err)
	}
	private, err := env.files.Create(ctx, models.File{
		UserID:    env.userID,
		Name:      "secret.txt",
		Type:      models.TypeFile,
		LocalPath: path,
	})
	if err != nil {
		t.Fatalf("seed file: %v", err)
	}

	t.Run("owner reads private", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/files/"+private.ID.Hex()+"/data", nil, &env.userID)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		if rec.Body.String() != "hello" {
			t.Errorf("body = %q, want hello", rec.Body.String())
		}
		if ct := rec.Header().Get("Content-Type"); ct != "text/plain; charset=utf-8" {
			t.Errorf("Content-Type = %q, want text/plain; charset=utf-8", ct)
		}
	})

	t.Run("anonymous blocked on private", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/files/"+private.ID.Hex()+"/data", nil, nil)
		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", rec.Code)
		}
	})

	t.Run("non-owner token blocked on private", func(t *testing.T) {
		other := primitive.NewObjectID()
		rec := env.do(t, http.MethodGet, "/files/"+private.ID.Hex()+"/data", nil, &other)
		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", rec.Code)
		}
	})

	if _, err := env.files.SetPublic(ctx, private.ID, env.userID, true); err != nil {
		t.Fatalf("publish: %v", err)
	}

	t.Run("anonymous reads public", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/files/"+private.ID.Hex()+"/data", nil, nil)
		if rec.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", rec.Code)
		}
	})

	t.Run("stale token blocked even on public", func(t *testing.T) {
		// A token header that resolved to nothing means 404, not
		// anonymous access.
		req := httptest.NewRequest(http.MethodGet, "/files/"+private.ID.Hex()+"/data", nil)
		req.Header.Set(auth.TokenHeader, "stale-token")
		rec := httptest.NewRecorder()
		env.router.ServeHTTP(rec, req)
		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", rec.Code)
		}
	})

	t.Run("unknown record", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/files/"+primitive.NewObjectID().Hex()+"/data", nil, &env.userID)
		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", rec.Code)
		}
	})
}

func TestData_Folder(t *testing.T) {
	env := newTestEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	folder, err := env.files.Create(ctx, models.File{
		UserID: env.userID,
		Name:   "docs",
		Type:   models.TypeFolder,
	})
	if err != nil {
		t.Fatalf("seed folder: %v", err)
	}

	rec := env.do(t, http.MethodGet, "/files/"+folder.ID.Hex()+"/data", nil, &env.userID)
	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", rec.Code)
	}
	if rec.Body.Len() != 0 {
		t.Errorf("body = %q, want empty", rec.Body.String())
	}
}

func TestData_SizeVariants(t *testing.T) {
	env := newTestEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	path := env.blobs.NewPath()
	if err := env.blobs.Write(ctx, path, []byte("full")); err != nil {
		t.Fatalf("write blob: %v", err)
	}
	if err := env.blobs.Write(ctx, content.VariantPath(path, 250), []byte("thumb250")); err != nil {
		t.Fatalf("write variant: %v", err)
	}

	f, err := env.files.Create(ctx, models.File{
		UserID:    env.userID,
		Name:      "pic.png",
		Type:      models.TypeImage,
		LocalPath: path,
	})
	if err != nil {
		t.Fatalf("seed image: %v", err)
	}

	rec := env.do(t, http.MethodGet, "/files/"+f.ID.Hex()+"/data?size=250", nil, &env.userID)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if rec.Body.String() != "thumb250" {
		t.Errorf("body = %q, want thumb250", rec.Body.String())
	}

	// Variant never generated.
	rec = env.do(t, http.MethodGet, "/files/"+f.ID.Hex()+"/data?size=100", nil, &env.userID)
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing variant status = %d, want 404", rec.Code)
	}

	// Unsupported width.
	rec = env.do(t, http.MethodGet, "/files/"+f.ID.Hex()+"/data?size=9999", nil, &env.userID)
	if rec.Code != http.StatusNotFound {
		t.Errorf("bad size status = %d, want 404", rec.Code)
	}
}
