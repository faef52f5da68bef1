package daemon_test

import (
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/openge/internal/adapters/daemon"
)

func TestLifecycle_AutoShutdown(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		lc := daemon.NewLifecycle(10 * time.Minute)

		select {
		case <-lc.Done():
		case <-time.After(11 * time.Minute):
			t.Fatal("expected shutdown after the idle timeout")
		}
		synctest.Wait()
	})
}

func TestLifecycle_TouchPostponesShutdown(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		lc := daemon.NewLifecycle(time.Minute)

		time.Sleep(50 * time.Second)
		lc.Touch()

		select {
		case <-lc.Done():
			t.Fatal("shutdown should not have triggered yet")
		case <-time.After(50 * time.Second):
		}

		assert.Equal(t, 10*time.Second, lc.IdleRemaining())

		<-lc.Done()
		synctest.Wait()
	})
}

func TestLifecycle_IdleRemaining(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		lc := daemon.NewLifecycle(100 * time.Millisecond)
		assert.Equal(t, 100*time.Millisecond, lc.IdleRemaining())

		time.Sleep(30 * time.Millisecond)
		assert.Equal(t, 70*time.Millisecond, lc.IdleRemaining())
		assert.Equal(t, 30*time.Millisecond, lc.Uptime())

		time.Sleep(200 * time.Millisecond)
		assert.Zero(t, lc.IdleRemaining())
		synctest.Wait()
	})
}

func TestLifecycle_ShutdownIsIdempotent(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		lc := daemon.NewLifecycle(time.Hour)
		lc.Shutdown()
		lc.Shutdown()

		select {
		case <-lc.Done():
		default:
			t.Fatal("expected lifecycle to be done")
		}
	})
}

func TestLifecycle_ZeroTimeoutNeverExpires(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		lc := daemon.NewLifecycle(0)

		select {
		case <-lc.Done():
			t.Fatal("a zero timeout must not expire")
		case <-time.After(24 * time.Hour):
		}
		lc.Shutdown()
	})
}

func TestLifecycle_PauseUntilTouch(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		lc := daemon.NewLifecycle(time.Minute)

		lc.Pause()

		select {
		case <-lc.Done():
			t.Fatal("a paused lifecycle must not expire")
		case <-time.After(10 * time.Minute):
		}

		lc.Touch()

		select {
		case <-lc.Done():
		case <-time.After(2 * time.Minute):
			t.Fatal("expected shutdown once the lifecycle was touched again")
		}
	})
}
