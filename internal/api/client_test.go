package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := New(server.URL, 5*time.Second, zerolog.Nop())
	require.NoError(t, err)
	return client, server
}

func TestNewRejectsRelativeURL(t *testing.T) {
	_, err := New("localhost:5051", 0, zerolog.Nop())
	assert.Error(t, err)
}

func TestRemoteErrorTaxonomy(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/quiz/program/1/user/2":
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]string{"error": "Quiz not found"})
		case "/me":
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"error": "Not logged in"})
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))

	_, err := client.QuizByProgramUser(context.Background(), 1, 2)
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	assert.False(t, IsUnauthorized(err))

	var remote *RemoteError
	require.ErrorAs(t, err, &remote)
	assert.Equal(t, "Quiz not found", remote.Message)

	_, err = client.Me(context.Background())
	assert.True(t, IsUnauthorized(err))
}

func TestRemoteMessageFallsBackToStatusText(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("<html>not json</html>"))
	}))

	_, err := client.Programs(context.Background())
	var remote *RemoteError
	require.ErrorAs(t, err, &remote)
	assert.Equal(t, http.StatusBadGateway, remote.Status)
	assert.Equal(t, http.StatusText(http.StatusBadGateway), remote.Message)
}

func TestLoginRetainsSessionCookie(t *testing.T) {
	var sawCookie bool
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/login":
			http.SetCookie(w, &http.Cookie{Name: "gema_session", Value: "tok", Path: "/"})
			json.NewEncoder(w).Encode(map[string]string{"message": "Logged in"})
		case "/me":
			cookie, err := r.Cookie("gema_session")
			sawCookie = err == nil && cookie.Value == "tok"
			json.NewEncoder(w).Encode(map[string]any{"id": 2, "username": "student", "role": "student"})
		}
	}))

	require.NoError(t, client.Login(context.Background(), "student", "password"))
	user, err := client.Me(context.Background())
	require.NoError(t, err)
	assert.True(t, sawCookie, "the /me request must carry the login cookie")
	assert.Equal(t, "student", user.Username)
}

func TestSessionSaveLoadRoundTrip(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "gema_session", Value: "persisted", Path: "/"})
		w.WriteHeader(http.StatusOK)
	})
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	first, err := New(server.URL, time.Second, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, first.Login(context.Background(), "u", "p"))

	path := filepath.Join(t.TempDir(), "state", "session.json")
	require.NoError(t, first.SaveSession(path))

	second, err := New(server.URL, time.Second, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, second.LoadSession(path))

	cookies := second.http.Jar.Cookies(second.baseURL)
	require.Len(t, cookies, 1)
	assert.Equal(t, "persisted", cookies[0].Value)
}

func TestLoadSessionMissingFileIsNotAnError(t *testing.T) {
	client, _ := newTestClient(t, http.NotFoundHandler())
	assert.NoError(t, client.LoadSession(filepath.Join(t.TempDir(), "absent.json")))
}

func TestSubmitPayload(t *testing.T) {
	var got map[string]any
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/submissions", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		json.NewEncoder(w).Encode(map[string]any{
			"id":      11,
			"results": []any{},
			"quiz":    map[string]any{"code_correct": true, "quiz": []any{}},
			"quiz_id": 7,
		})
	}))

	result, err := client.Submit(context.Background(), SubmitRequest{
		ProgramID:    1,
		UserID:       2,
		Code:         "print(1)",
		LanguageID:   71,
		QuizLanguage: "en",
	})
	require.NoError(t, err)

	assert.Equal(t, float64(1), got["program_id"])
	assert.Equal(t, float64(2), got["user_id"])
	assert.Equal(t, "print(1)", got["code"])
	assert.Equal(t, float64(71), got["language_id"])
	assert.Equal(t, "en", got["quiz_language"])

	assert.Equal(t, 7, result.QuizID)
	assert.True(t, result.Quiz.CodeCorrect)
}

func TestMarkQuizPayload(t *testing.T) {
	var got struct {
		QuizID  int               `json:"quiz_id"`
		Answers map[string]string `json:"answers"`
	}
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/quiz/mark", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		json.NewEncoder(w).Encode(map[string]int{"quiz_id": got.QuizID, "marks": 1, "total": 2})
	}))

	result, err := client.MarkQuiz(context.Background(), 7, map[string]string{"0": "A", "1": "D"})
	require.NoError(t, err)

	assert.Equal(t, 7, got.QuizID)
	assert.Equal(t, map[string]string{"0": "A", "1": "D"}, got.Answers)
	assert.Equal(t, 1, result.Marks)
	assert.Equal(t, 2, result.Total)
}

func TestSendTextMultipartFields(t *testing.T) {
	var form map[string]string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		form = map[string]string{}
		for key := range r.MultipartForm.Value {
			form[key] = r.FormValue(key)
		}
		w.WriteHeader(http.StatusOK)
	}))

	err := client.SendText(context.Background(), TextMessage{
		ProgramID: 3,
		UserID:    2,
		Text:      "why does the loop stop at n-1?",
		Language:  "en",
	})
	require.NoError(t, err)

	assert.Equal(t, map[string]string{
		"text":       "why does the loop stop at n-1?",
		"user_id":    "2",
		"program_id": "3",
		"language":   "en",
	}, form)
}

func TestSendAudioMultipartFile(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))

		assert.Equal(t, "2", r.FormValue("user_id"))
		assert.Equal(t, "3", r.FormValue("program_id"))

		file, header, err := r.FormFile("audio")
		require.NoError(t, err)
		defer file.Close()

		assert.Equal(t, "clip.wav", header.Filename)
		assert.Equal(t, "audio/wav", header.Header.Get("Content-Type"))
		w.WriteHeader(http.StatusOK)
	}))

	err := client.SendAudio(context.Background(), AudioMessage{
		ProgramID: 3,
		UserID:    2,
		FileName:  "clip.wav",
		Content:   []byte("RIFFxxxxWAVE"),
		MIMEType:  "audio/wav",
	})
	require.NoError(t, err)
}

func TestDownloadAudio(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/audio/media/reply-1.mp3", r.URL.Path)
		w.Write([]byte("binary audio"))
	}))

	data, err := client.DownloadAudio(context.Background(), "media/reply-1.mp3")
	require.NoError(t, err)
	assert.Equal(t, []byte("binary audio"), data)
}

func TestNetworkErrorOnUnreachableServer(t *testing.T) {
	client, err := New("http://127.0.0.1:1", time.Second, zerolog.Nop())
	require.NoError(t, err)

	_, err = client.Programs(context.Background())
	var netErr *NetworkError
	assert.ErrorAs(t, err, &netErr)
}
