package window

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFrameQueueRunsOnlyQueuedCallbacks(t *testing.T) {
	q := &frameQueue{}
	runs := 0
	var loop func()
	loop = func() {
		runs++
		q.push(loop)
	}
	q.push(loop)

	assert.Equal(t, 1, q.drain())
	assert.Equal(t, 1, runs, "a callback re-queued during drain waits for the next drain")
	assert.Equal(t, 1, q.drain())
	assert.Equal(t, 2, runs)
}

func TestFrameQueueOrderAndClear(t *testing.T) {
	q := &frameQueue{}
	var order []int
	for i := range 3 {
		q.push(func() { order = append(order, i) })
	}
	q.push(nil)
	assert.Equal(t, 3, q.drain())
	assert.Equal(t, []int{0, 1, 2}, order)

	q.push(func() { order = append(order, 9) })
	q.clear()
	assert.Equal(t, 0, q.drain())
	assert.Len(t, order, 3)
}

func TestFrameQueueConcurrentPush(t *testing.T) {
	q := &frameQueue{}
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				q.push(func() {})
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 800, q.drain())
}

func TestDispatchKeySeparatesPressFromRepeat(t *testing.T) {
	w := &engineWindow{}
	var presses, downs, ups []uint32
	w.SetKeyPressCallback(func(k uint32) { presses = append(presses, k) })
	w.SetKeyDownCallback(func(k uint32) { downs = append(downs, k) })
	w.SetKeyUpCallback(func(k uint32) { ups = append(ups, k) })

	w.dispatchKey(32, keyActionPress)
	w.dispatchKey(32, keyActionRepeat)
	w.dispatchKey(32, keyActionRepeat)
	w.dispatchKey(32, keyActionRelease)

	assert.Equal(t, []uint32{32}, presses)
	assert.Equal(t, []uint32{32, 32, 32}, downs)
	assert.Equal(t, []uint32{32}, ups)
}

func TestDispatchKeyWithoutCallbacks(t *testing.T) {
	w := &engineWindow{}
	assert.NotPanics(t, func() {
		w.dispatchKey(65, keyActionPress)
		w.dispatchKey(65, keyActionRepeat)
		w.dispatchKey(65, keyActionRelease)
	})
}

func TestSizeLimitsUnsetBounds(t *testing.T) {
	w := &engineWindow{}
	WithSizeLimits(320, 0, 0, 1080)(w)
	minW, minH, maxW, maxH := w.sizeLimits()
	assert.Equal(t, 320, minW)
	assert.Equal(t, -1, minH)
	assert.Equal(t, -1, maxW)
	assert.Equal(t, 1080, maxH)
}

func TestBuilderOptions(t *testing.T) {
	w := &engineWindow{resizable: true}
	WithTitle("boxes")(w)
	WithSize(800, 600)(w)
	WithResizable(false)(w)
	assert.Equal(t, "boxes", w.title)
	assert.Equal(t, 800, w.width)
	assert.Equal(t, 600, w.height)
	assert.False(t, w.resizable)
}
