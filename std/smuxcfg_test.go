package std

import "testing"

func TestBuildSmuxConfigValid(t *testing.T) {
	cfg, err := BuildSmuxConfig(SmuxParams{
		Version:          2,
		MaxReceiveBuffer: 4194304,
		MaxStreamBuffer:  2097152,
		MaxFrameSize:     8192,
		KeepAliveSeconds: 10,
	})
	if err != nil {
		t.Fatalf("BuildSmuxConfig: %v", err)
	}
	if cfg.Version != 2 || cfg.MaxFrameSize != 8192 {
		t.Fatalf("config not populated: %+v", cfg)
	}
}

func TestBuildSmuxConfigRejectsBadVersion(t *testing.T) {
	if _, err := BuildSmuxConfig(SmuxParams{
		Version:          0,
		MaxReceiveBuffer: 4194304,
		MaxStreamBuffer:  2097152,
		MaxFrameSize:     8192,
		KeepAliveSeconds: 10,
	}); err == nil {
		t.Fatalf("expected error for smux version 0")
	}
}
