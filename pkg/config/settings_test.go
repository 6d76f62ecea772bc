package config

import (
	"sync"
	"testing"
	"time"
)

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings()
	if s.StopOnFirstSuccess || !s.PersistStorage || s.Timeout != 3*time.Second {
		t.Errorf("unexpected defaults %+v", s)
	}
}

func TestConfigurePatch(t *testing.T) {
	live := NewLiveSettings(DefaultSettings())

	stop := true
	got := live.Configure(SettingsPatch{StopOnFirstSuccess: &stop})
	if !got.StopOnFirstSuccess || !got.PersistStorage || got.Timeout != 3*time.Second {
		t.Errorf("only stop_on_first_success should change, got %+v", got)
	}

	persist := false
	timeout := 500 * time.Millisecond
	live.Configure(SettingsPatch{PersistStorage: &persist, Timeout: &timeout})

	s := live.Settings()
	if s.PersistStorage || s.Timeout != timeout || !s.StopOnFirstSuccess {
		t.Errorf("unexpected settings after second patch %+v", s)
	}

	// empty patch is a no-op
	if live.Configure(SettingsPatch{}) != s {
		t.Error("empty patch should not change settings")
	}
}

func TestLiveSettingsConcurrentAccess(t *testing.T) {
	live := NewLiveSettings(DefaultSettings())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			d := time.Duration(i) * time.Millisecond
			live.Configure(SettingsPatch{Timeout: &d})
		}(i)
		go func() {
			defer wg.Done()
			_ = live.Settings()
		}()
	}
	wg.Wait()
}
