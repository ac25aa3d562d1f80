package notify

import (
	"fmt"
	"testing"
	"time"

	"github.com/drsite/drsite-web/internal/dom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRenderer struct{}

func (fakeRenderer) NoticeContainer() (string, error) {
	return `<div id="notification-container"></div>`, nil
}

func (fakeRenderer) Notice(n *Notice) (string, error) {
	return fmt.Sprintf(`<div id="%s" class="alert-%s shown=%t">%s</div>`, n.ID, n.Severity, n.Shown, n.Text), nil
}

func newTestSurface(t *testing.T, ttl, fade time.Duration) (*Surface, *dom.Recorder) {
	t.Helper()
	rec := &dom.Recorder{}
	s := NewSurface(rec, fakeRenderer{}, Options{
		TTL:        ttl,
		Fade:       fade,
		DismissURL: func(id string) string { return "/pages/p1/notices/" + id + "/dismiss" },
	})
	t.Cleanup(s.Close)
	return s, rec
}

func TestSurface_ContainerCreatedOnce(t *testing.T) {
	s, rec := newTestSurface(t, time.Minute, time.Minute)

	_, err := s.Notify("een", Info)
	require.NoError(t, err)
	_, err = s.Notify("twee", Danger)
	require.NoError(t, err)

	containers := rec.Matching("body")
	require.Len(t, containers, 1)
	assert.Equal(t, dom.ModeAppend, containers[0].Mode)
	assert.Contains(t, containers[0].HTML, ContainerID)
}

func TestSurface_NoticesStackInArrivalOrder(t *testing.T) {
	s, rec := newTestSurface(t, time.Minute, time.Minute)

	first, err := s.Notify("een", Info)
	require.NoError(t, err)
	second, err := s.Notify("twee", Success)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	appended := rec.Matching("#" + ContainerID)
	require.Len(t, appended, 2)
	assert.Contains(t, appended[0].HTML, "een")
	assert.Contains(t, appended[1].HTML, "twee")

	active := s.Active()
	require.Len(t, active, 2)
	assert.Equal(t, first, active[0].ID)
	assert.Equal(t, second, active[1].ID)
	assert.Equal(t, "/pages/p1/notices/"+first+"/dismiss", active[0].DismissURL)
}

func TestSurface_AutoDismissFadesThenDetaches(t *testing.T) {
	s, rec := newTestSurface(t, 20*time.Millisecond, 20*time.Millisecond)

	id, err := s.Notify("Controleer de formuliervelden", Danger)
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		for _, p := range rec.Matching("#" + id) {
			if p.Mode == dom.ModeRemove {
				return true
			}
		}
		return false
	}, time.Second, 2*time.Millisecond)

	patches := rec.Matching("#" + id)
	require.Len(t, patches, 2)
	assert.Equal(t, dom.ModeOuter, patches[0].Mode)
	assert.Contains(t, patches[0].HTML, "shown=false")
	assert.Equal(t, dom.ModeRemove, patches[1].Mode)
	assert.Empty(t, s.Active())
}

func TestSurface_ManualDismiss(t *testing.T) {
	s, rec := newTestSurface(t, time.Minute, 10*time.Millisecond)

	id, err := s.Notify("Bedankt!", Success)
	require.NoError(t, err)

	assert.True(t, s.Dismiss(id))
	assert.False(t, s.Dismiss(id), "already fading")
	assert.False(t, s.Dismiss("notice-missing"))

	assert.Eventually(t, func() bool {
		return len(s.Active()) == 0
	}, time.Second, 2*time.Millisecond)
	assert.Len(t, rec.Matching("#"+id), 2)
}

func TestSurface_ExpiryIsIndependent(t *testing.T) {
	s, _ := newTestSurface(t, 30*time.Millisecond, 5*time.Millisecond)

	_, err := s.Notify("een", Info)
	require.NoError(t, err)
	time.Sleep(15 * time.Millisecond)
	second, err := s.Notify("twee", Info)
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		active := s.Active()
		return len(active) == 1 && active[0].ID == second
	}, time.Second, time.Millisecond)

	assert.Eventually(t, func() bool {
		return len(s.Active()) == 0
	}, time.Second, 2*time.Millisecond)
}

func TestSurface_CloseStopsTimers(t *testing.T) {
	rec := &dom.Recorder{}
	s := NewSurface(rec, fakeRenderer{}, Options{TTL: 10 * time.Millisecond})

	id, err := s.Notify("een", Info)
	require.NoError(t, err)
	s.Close()

	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, rec.Matching("#"+id))

	_, err = s.Notify("twee", Info)
	assert.Error(t, err)
	assert.False(t, s.Dismiss(id))
}

func TestNewSurface_Defaults(t *testing.T) {
	s := NewSurface(&dom.Recorder{}, fakeRenderer{}, Options{})
	assert.Equal(t, DefaultTTL, s.opts.TTL)
	assert.Equal(t, DefaultFade, s.opts.Fade)
}
