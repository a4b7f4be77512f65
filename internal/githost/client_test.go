package githost

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	// go-github requires the trailing slash on the endpoint.
	return NewClient(Config{BaseURL: srv.URL + "/"})
}

func contentJSON(path, content string) string {
	return fmt.Sprintf(`{"type":"file","encoding":"base64","path":%q,"content":%q}`,
		path, base64.StdEncoding.EncodeToString([]byte(content)))
}

func TestRepoByID(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repositories/99", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id":99,"name":"web","owner":{"login":"acme"}}`)
	})

	ref, err := newTestClient(t, mux).RepoByID(context.Background(), 99, "")
	require.NoError(t, err)
	assert.Equal(t, RepoRef{Owner: "acme", Name: "web"}, ref)
}

func TestRepoByIDNotFound(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"message":"Not Found"}`)
	})

	_, err := newTestClient(t, mux).RepoByID(context.Background(), 99, "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCommitFiles(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/acme/web/commits/abc123", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{
			"sha": "abc123",
			"files": [
				{"filename": "src/app.ts", "status": "modified", "additions": 12, "deletions": 3},
				{"filename": "src/gone.ts", "status": "removed", "additions": 0, "deletions": 40},
				{"filename": "README.md", "status": "modified", "additions": 2, "deletions": 0},
				{"filename": "src/util.js", "status": "added", "additions": 7, "deletions": 0}
			]
		}`)
	})
	mux.HandleFunc("GET /repos/acme/web/contents/src/app.ts", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "abc123", r.URL.Query().Get("ref"))
		fmt.Fprint(w, contentJSON("src/app.ts", "const a: number = 1;"))
	})
	mux.HandleFunc("GET /repos/acme/web/contents/src/util.js", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, contentJSON("src/util.js", "export const b = 2;"))
	})

	files, err := newTestClient(t, mux).CommitFiles(context.Background(), "acme", "web", "abc123", "")
	require.NoError(t, err)
	require.Len(t, files, 2, "removed files and disallowed extensions must be filtered out")

	byPath := map[string]CommitFile{}
	for _, f := range files {
		byPath[f.Path] = f
	}
	assert.Equal(t, "const a: number = 1;", byPath["src/app.ts"].Content)
	assert.Equal(t, 12, byPath["src/app.ts"].Additions)
	assert.Equal(t, 3, byPath["src/app.ts"].Deletions)
	assert.Equal(t, "export const b = 2;", byPath["src/util.js"].Content)
}

func TestCommitFilesSkipsUnfetchableContent(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/acme/web/commits/abc123", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{
			"sha": "abc123",
			"files": [
				{"filename": "src/ok.ts", "status": "modified", "additions": 1},
				{"filename": "src/broken.ts", "status": "modified", "additions": 1}
			]
		}`)
	})
	mux.HandleFunc("GET /repos/acme/web/contents/src/ok.ts", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, contentJSON("src/ok.ts", "const ok = true;"))
	})
	mux.HandleFunc("GET /repos/acme/web/contents/src/broken.ts", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, `{"message":"boom"}`)
	})

	files, err := newTestClient(t, mux).CommitFiles(context.Background(), "acme", "web", "abc123", "")
	require.NoError(t, err, "one unfetchable file must not fail the batch")
	require.Len(t, files, 1)
	assert.Equal(t, "src/ok.ts", files[0].Path)
}

func TestCommitFilesSendsBearerToken(t *testing.T) {
	var seen string
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/acme/web/commits/abc123", func(w http.ResponseWriter, r *http.Request) {
		seen = r.Header.Get("Authorization")
		fmt.Fprint(w, `{"sha":"abc123","files":[]}`)
	})

	_, err := newTestClient(t, mux).CommitFiles(context.Background(), "acme", "web", "abc123", "ghp_secret")
	require.NoError(t, err)
	assert.Equal(t, "Bearer ghp_secret", seen)
}

func TestCommitFilesErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   error
	}{
		{"unknown commit", http.StatusNotFound, ErrNotFound},
		{"unresolvable ref", http.StatusUnprocessableEntity, ErrNotFound},
		{"bad credential", http.StatusUnauthorized, ErrAuth},
		{"insufficient scope", http.StatusForbidden, ErrAuth},
		{"upstream failure", http.StatusInternalServerError, ErrUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mux := http.NewServeMux()
			mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, `{"message":"nope"}`)
			})
			_, err := newTestClient(t, mux).CommitFiles(context.Background(), "acme", "web", "abc123", "")
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestCommitFilesNoEndpoint(t *testing.T) {
	c := NewClient(Config{BaseURL: "http://127.0.0.1:0/"})
	_, err := c.CommitFiles(context.Background(), "acme", "web", "abc123", "")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestAllowedPath(t *testing.T) {
	c := NewClient(Config{})
	assert.True(t, c.allowedPath("src/app.ts"))
	assert.True(t, c.allowedPath("src/App.TSX"))
	assert.True(t, c.allowedPath("index.js"))
	assert.False(t, c.allowedPath("README.md"))
	assert.False(t, c.allowedPath("Makefile"))

	custom := NewClient(Config{Extensions: []string{".vue"}})
	assert.True(t, custom.allowedPath("src/Form.vue"))
	assert.False(t, custom.allowedPath("src/app.ts"))
}

func TestParseRepoURL(t *testing.T) {
	tests := []struct {
		raw  string
		want RepoRef
	}{
		{"https://github.com/acme/web", RepoRef{"acme", "web"}},
		{"https://github.com/acme/web.git", RepoRef{"acme", "web"}},
		{"git@github.com:acme/web.git", RepoRef{"acme", "web"}},
	}
	for _, tt := range tests {
		got, err := ParseRepoURL(tt.raw)
		require.NoError(t, err, tt.raw)
		assert.Equal(t, tt.want, got, tt.raw)
	}

	_, err := ParseRepoURL("https://example.com/acme/web")
	assert.Error(t, err)
}
