package telegram

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oggyb/matchbot/internal/logger"
)

// fakeAPI answers getMe, hangs on sendMessage until the caller gives up and
// records editMessageReplyMarkup forms.
type fakeAPI struct {
	sends atomic.Int32

	mu    sync.Mutex
	edits []map[string]string
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	switch {
	case strings.HasSuffix(r.URL.Path, "/getMe"):
		_, _ = w.Write([]byte(`{"ok":true,"result":{"id":1,"is_bot":true,"first_name":"match","username":"matchbot"}}`))
	case strings.HasSuffix(r.URL.Path, "/sendMessage"):
		f.sends.Add(1)
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	case strings.HasSuffix(r.URL.Path, "/editMessageReplyMarkup"):
		_ = r.ParseForm()
		f.mu.Lock()
		f.edits = append(f.edits, map[string]string{
			"chat_id":      r.FormValue("chat_id"),
			"message_id":   r.FormValue("message_id"),
			"reply_markup": r.FormValue("reply_markup"),
		})
		f.mu.Unlock()
		_, _ = w.Write([]byte(`{"ok":true,"result":true}`))
	default:
		http.NotFound(w, r)
	}
}

func setupClient(t *testing.T, timeout time.Duration) (*Client, *fakeAPI) {
	t.Helper()
	api := &fakeAPI{}
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	c, err := newClient("123:token", srv.URL+"/bot%s/%s", &http.Client{Timeout: timeout}, 1, logger.Discard())
	require.NoError(t, err)
	require.False(t, c.DryRun())
	return c, api
}

func TestClient_SendGivesUpOnHungAPI(t *testing.T) {
	c, api := setupClient(t, 200*time.Millisecond)

	started := time.Now()
	err := c.SendText(context.Background(), 7, "hi", nil)
	assert.Error(t, err)
	assert.Less(t, time.Since(started), 3*time.Second)
	assert.Equal(t, int32(1), api.sends.Load())
}

func TestClient_SendHonoursCancelledContext(t *testing.T) {
	c, api := setupClient(t, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, c.SendText(ctx, 7, "hi", nil), context.Canceled)
	assert.ErrorIs(t, c.SendPhoto(ctx, 7, "file", "", nil), context.Canceled)
	assert.Zero(t, api.sends.Load())
}

func TestClient_ClearButtons(t *testing.T) {
	c, api := setupClient(t, time.Second)

	require.NoError(t, c.ClearButtons(context.Background(), 7, 55))

	api.mu.Lock()
	defer api.mu.Unlock()
	require.Len(t, api.edits, 1)
	assert.Equal(t, "7", api.edits[0]["chat_id"])
	assert.Equal(t, "55", api.edits[0]["message_id"])
	assert.Contains(t, api.edits[0]["reply_markup"], `"inline_keyboard":[]`)
}
