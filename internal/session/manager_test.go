// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/polychat/internal/model"
	"github.com/jeranaias/polychat/internal/provider"
	"github.com/jeranaias/polychat/internal/settings"
)

// =============================================================================
// HELPERS
// =============================================================================

// call records one adapter invocation.
type call struct {
	History  []model.Message
	Message  model.Message
	Settings settings.Settings
}

// recorder is a fake adapter that records calls and replies via fn.
type recorder struct {
	mu    sync.Mutex
	id    model.ProviderID
	calls []call
	fn    func(n int, msg model.Message) (string, error)
}

func (r *recorder) ID() model.ProviderID { return r.id }

func (r *recorder) Send(_ context.Context, history []model.Message, msg model.Message, s settings.Settings) (string, error) {
	r.mu.Lock()
	r.calls = append(r.calls, call{History: history, Message: msg, Settings: s})
	n := len(r.calls)
	r.mu.Unlock()
	if r.fn == nil {
		return "reply " + msg.Content, nil
	}
	return r.fn(n, msg)
}

func reply(content string, err error) func(int, model.Message) (string, error) {
	return func(int, model.Message) (string, error) { return content, err }
}

func newTestManager(t *testing.T, cloud, local, gen *recorder) *Manager {
	t.Helper()
	reg := provider.Registry{}
	if cloud != nil {
		reg.Cloud = cloud
	}
	if local != nil {
		reg.Local = local
	}
	if gen != nil {
		reg.Generative = gen
	}
	m, err := NewManager(Config{Registry: reg})
	require.NoError(t, err)
	return m
}

func useProvider(t *testing.T, m *Manager, id model.ProviderID) {
	t.Helper()
	require.NoError(t, m.UpdateSettings(func(s *settings.Settings) { s.Provider = id }))
}

// =============================================================================
// SUBMIT TESTS
// =============================================================================

func TestSubmit_Success(t *testing.T) {
	cloud := &recorder{id: model.ProviderCloud, fn: reply("hi", nil)}
	m := newTestManager(t, cloud, nil, nil)

	if m.Loading() {
		t.Fatal("loading should be false before the first submit")
	}

	got, err := m.Submit(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "hi", got.Content)

	msgs := m.Snapshot()
	require.Len(t, msgs, 2)
	assert.Equal(t, model.RoleUser, msgs[0].Role)
	assert.Equal(t, "hello", msgs[0].Content)
	assert.Equal(t, model.RoleAssistant, msgs[1].Role)
	assert.Equal(t, "hi", msgs[1].Content)
	assert.Equal(t, model.ProviderCloud, msgs[1].Provider)
	assert.False(t, m.Loading())
}

func TestSubmit_EachProviderTagsReply(t *testing.T) {
	for _, id := range model.AllProviders {
		t.Run(id.String(), func(t *testing.T) {
			m := newTestManager(t,
				&recorder{id: model.ProviderCloud},
				&recorder{id: model.ProviderLocal},
				&recorder{id: model.ProviderGenerative})
			useProvider(t, m, id)

			before := m.Len()
			_, err := m.Submit(context.Background(), "ping")
			require.NoError(t, err)

			msgs := m.Snapshot()
			require.Len(t, msgs, before+2)
			assert.Equal(t, id, msgs[len(msgs)-1].Provider)
			assert.Equal(t, 1, countRole(msgs, model.RoleAssistant))
		})
	}
}

func TestSubmit_ProviderSwitchKeepsPerMessageTags(t *testing.T) {
	m := newTestManager(t,
		&recorder{id: model.ProviderCloud},
		&recorder{id: model.ProviderLocal},
		&recorder{id: model.ProviderGenerative})

	order := []model.ProviderID{model.ProviderLocal, model.ProviderCloud, model.ProviderGenerative}
	for i, id := range order {
		useProvider(t, m, id)
		_, err := m.Submit(context.Background(), fmt.Sprintf("q%d", i))
		require.NoError(t, err)
	}

	msgs := m.Snapshot()
	require.Len(t, msgs, 6)
	for i, id := range order {
		assert.Equal(t, id, msgs[2*i+1].Provider)
		assert.Equal(t, model.ProviderUnknown, msgs[2*i].Provider, "user turns carry no provider")
	}
}

func TestSubmit_HistoryIsPriorMessages(t *testing.T) {
	cloud := &recorder{id: model.ProviderCloud}
	m := newTestManager(t, cloud, nil, nil)

	for i := 0; i < 4; i++ {
		_, err := m.Submit(context.Background(), fmt.Sprintf("m%d", i))
		require.NoError(t, err)
	}

	final := m.Snapshot()
	require.Len(t, cloud.calls, 4)
	for i, c := range cloud.calls {
		// The i-th user message sits at index 2i; history is everything before it.
		want := final[:2*i]
		require.Len(t, c.History, len(want), "call %d", i)
		for j := range want {
			assert.Equal(t, want[j].ID, c.History[j].ID)
		}
		assert.Equal(t, final[2*i].ID, c.Message.ID)
		for _, h := range c.History {
			assert.NotEqual(t, c.Message.ID, h.ID, "current message must not appear in history")
		}
	}
}

func TestSubmit_EmptyReplyFallback(t *testing.T) {
	m := newTestManager(t, &recorder{id: model.ProviderCloud, fn: reply("", nil)}, nil, nil)

	got, err := m.Submit(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, EmptyReplyText, got.Content)
	assert.Equal(t, model.ProviderCloud, got.Provider)
}

func TestSubmit_FailureBecomesMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "provider error",
			err:  provider.NewError(model.ProviderCloud, provider.KindGeneric, "invalid api key", nil),
			want: "Error: invalid api key",
		},
		{
			name: "plain error",
			err:  errors.New("boom"),
			want: "Error: boom",
		},
		{
			name: "empty message",
			err:  errors.New(""),
			want: "Error: Unknown error occurred",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m := newTestManager(t, &recorder{id: model.ProviderCloud, fn: reply("", tc.err)}, nil, nil)

			got, err := m.Submit(context.Background(), "hello")
			require.NoError(t, err, "adapter failures are never returned")
			assert.Equal(t, tc.want, got.Content)
			assert.Equal(t, model.RoleAssistant, got.Role)
			assert.Equal(t, model.ProviderCloud, got.Provider)
			assert.Equal(t, 2, m.Len())
			assert.False(t, m.Loading())
		})
	}
}

func TestSubmit_Blank(t *testing.T) {
	cloud := &recorder{id: model.ProviderCloud}
	m := newTestManager(t, cloud, nil, nil)

	for _, text := range []string{"", "   ", "\n\t"} {
		_, err := m.Submit(context.Background(), text)
		assert.ErrorIs(t, err, ErrBlank)
	}
	assert.Equal(t, 0, m.Len())
	assert.Empty(t, cloud.calls)
}

func TestSubmit_MissingAdapter(t *testing.T) {
	m := newTestManager(t, &recorder{id: model.ProviderCloud}, nil, nil)
	useProvider(t, m, model.ProviderLocal)

	_, err := m.Submit(context.Background(), "hello")
	assert.ErrorIs(t, err, provider.ErrNotConfigured)
	assert.Equal(t, 0, m.Len())
	assert.False(t, m.Loading())
}

// =============================================================================
// THREE-STEP LIFE-CYCLE TESTS
// =============================================================================

func TestBegin_IsOptimistic(t *testing.T) {
	m := newTestManager(t, &recorder{id: model.ProviderCloud}, nil, nil)

	p, err := m.Begin("hello")
	require.NoError(t, err)

	assert.True(t, m.Loading())
	msgs := m.Snapshot()
	require.Len(t, msgs, 1, "user turn is visible before any network activity")
	assert.Equal(t, p.Message.ID, msgs[0].ID)
	assert.Empty(t, p.History)
	assert.Equal(t, model.ProviderCloud, p.Provider())

	m.Complete(m.Dispatch(context.Background(), p))
	assert.False(t, m.Loading())
	assert.Equal(t, 2, m.Len())
}

func TestBegin_RejectsOverlap(t *testing.T) {
	m := newTestManager(t, &recorder{id: model.ProviderCloud}, nil, nil)

	p, err := m.Begin("first")
	require.NoError(t, err)

	_, err = m.Begin("second")
	assert.ErrorIs(t, err, ErrBusy)
	_, err = m.BeginNewThread("seed")
	assert.ErrorIs(t, err, ErrBusy)
	assert.Equal(t, 1, m.Len())

	m.Complete(m.Dispatch(context.Background(), p))

	_, err = m.Submit(context.Background(), "second")
	assert.NoError(t, err)
	assert.Equal(t, 4, m.Len())
}

func TestSettingsSnapshotIsolation(t *testing.T) {
	cloud := &recorder{id: model.ProviderCloud}
	m := newTestManager(t, cloud, &recorder{id: model.ProviderLocal}, nil)

	p, err := m.Begin("hello")
	require.NoError(t, err)

	require.NoError(t, m.UpdateSettings(func(s *settings.Settings) {
		s.Temperature = 0.2
		s.Provider = model.ProviderLocal
	}))

	m.Complete(m.Dispatch(context.Background(), p))

	require.Len(t, cloud.calls, 1)
	assert.Equal(t, 1.0, cloud.calls[0].Settings.Temperature)
	assert.Equal(t, model.ProviderCloud, m.Snapshot()[1].Provider)
	assert.Equal(t, 0.2, m.Settings().Temperature)
}

func TestComplete_DropsReplyAfterClear(t *testing.T) {
	m := newTestManager(t, &recorder{id: model.ProviderCloud}, nil, nil)

	p, err := m.Begin("hello")
	require.NoError(t, err)

	m.Clear()
	assert.Equal(t, 0, m.Len())
	assert.True(t, m.Loading(), "the request is still in flight")

	msg, appended := m.Complete(m.Dispatch(context.Background(), p))
	assert.False(t, appended)
	assert.Equal(t, "reply hello", msg.Content)
	assert.Equal(t, 0, m.Len())
	assert.False(t, m.Loading())
}

func TestDispatch_ConcurrentReaders(t *testing.T) {
	release := make(chan struct{})
	cloud := &recorder{id: model.ProviderCloud, fn: func(int, model.Message) (string, error) {
		<-release
		return "done", nil
	}}
	m := newTestManager(t, cloud, nil, nil)

	p, err := m.Begin("hello")
	require.NoError(t, err)

	done := make(chan Outcome)
	go func() { done <- m.Dispatch(context.Background(), p) }()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = m.Snapshot()
			_ = m.Loading()
			_ = m.Settings()
		}()
	}
	wg.Wait()

	close(release)
	m.Complete(<-done)
	assert.Equal(t, 2, m.Len())
}

// =============================================================================
// SETTINGS TESTS
// =============================================================================

func TestUpdateSettings_RejectsInvalid(t *testing.T) {
	m := newTestManager(t, &recorder{id: model.ProviderCloud}, nil, nil)

	err := m.UpdateSettings(func(s *settings.Settings) { s.MaxTokens = 10 })
	require.Error(t, err)
	assert.Equal(t, 1024, m.Settings().MaxTokens, "settings unchanged on error")

	bad := settings.Default()
	bad.TopP = 2
	assert.Error(t, m.SetSettings(bad))

	err = m.UpdateSettings(func(s *settings.Settings) { s.Temperature = math.NaN() })
	require.Error(t, err)
	assert.Equal(t, 1.0, m.Settings().Temperature)

	good := settings.Default()
	good.Provider = model.ProviderGenerative
	require.NoError(t, m.SetSettings(good))
	assert.Equal(t, model.ProviderGenerative, m.Settings().Provider)
}

func TestNewManager_InvalidSettings(t *testing.T) {
	bad := settings.Default()
	bad.Temperature = 9
	_, err := NewManager(Config{Settings: &bad})
	assert.Error(t, err)
}

func countRole(msgs []model.Message, r model.Role) int {
	n := 0
	for _, m := range msgs {
		if m.Role == r {
			n++
		}
	}
	return n
}
