package upload

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUploadResume(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, _, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "private-key", user)

		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "resume.pdf", r.FormValue("fileName"))
		assert.Equal(t, "/resumes", r.FormValue("folder"))

		file, _, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"url":"https://ik.example/resumes/resume.pdf","fileId":"f1","name":"resume.pdf"}`))
	}))
	defer server.Close()

	client := NewClient(&Config{
		Endpoint:   server.URL,
		PrivateKey: "private-key",
		Folder:     "/resumes",
		Timeout:    5 * time.Second,
	})

	url, err := client.UploadResume(context.Background(), "resume.pdf", strings.NewReader("%PDF-1.4 fake"))
	require.NoError(t, err)
	assert.Equal(t, "https://ik.example/resumes/resume.pdf", url)
}

func TestUploadResumeServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "bad key", http.StatusForbidden)
	}))
	defer server.Close()

	client := NewClient(&Config{Endpoint: server.URL, PrivateKey: "k", Folder: "/r", Timeout: 5 * time.Second})

	_, err := client.UploadResume(context.Background(), "resume.pdf", strings.NewReader("x"))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

func TestUploadResumeNotConfigured(t *testing.T) {
	client := NewClient(&Config{Timeout: time.Second})

	_, err := client.UploadResume(context.Background(), "resume.pdf", strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrNotConfigured)
}
