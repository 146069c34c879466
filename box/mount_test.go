// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package box

import "testing"

func TestParseVolume(t *testing.T) {
	t.Parallel()

	tests := []struct {
		spec    string
		want    Mount
		wantErr bool
	}{
		{spec: "/opt", want: Mount{Source: "/opt", Dest: "/opt"}},
		{spec: "/opt:/mnt/opt", want: Mount{Source: "/opt", Dest: "/mnt/opt"}},
		{spec: "/opt:/opt:ro", want: Mount{Source: "/opt", Dest: "/opt", Mode: "ro"}},
		{spec: "/opt:/opt:ro,rslave", want: Mount{Source: "/opt", Dest: "/opt", Mode: "ro,rslave"}},
		{spec: "/data:/data:Z", want: Mount{Source: "/data", Dest: "/data", Mode: "Z"}},
		{spec: "", wantErr: true},
		{spec: ":/opt", wantErr: true},
		{spec: "/opt:", wantErr: true},
		{spec: "/opt:/opt:sideways", wantErr: true},
		{spec: "/a:/b:ro:extra", wantErr: true},
	}
	for _, test := range tests {
		t.Run(test.spec, func(t *testing.T) {
			got, err := ParseVolume(test.spec)
			if test.wantErr {
				if err == nil {
					t.Fatalf("ParseVolume(%q) = %+v, want error", test.spec, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseVolume(%q): %v", test.spec, err)
			}
			if got != test.want {
				t.Errorf("ParseVolume(%q) = %+v, want %+v", test.spec, got, test.want)
			}
		})
	}
}

func TestMountValue(t *testing.T) {
	t.Parallel()

	if got := (Mount{Source: "/", Dest: "/run/host", Mode: ModeRSlave}).Value(); got != "/:/run/host:rslave" {
		t.Errorf("Value() = %q", got)
	}
	if got := (Mount{Source: "/opt", Dest: "/opt"}).Value(); got != "/opt:/opt" {
		t.Errorf("Value() without mode = %q", got)
	}
}

func TestMountPlanDedupFirstWins(t *testing.T) {
	t.Parallel()

	var plan MountPlan
	plan.Add("/home/alice", ModeRSlave)
	plan.Add("/tmp", ModeRSlave)
	plan.AddMapped("/srv/home", "/home/alice", ModeRO)

	deduped := plan.Dedup()
	if len(deduped) != 2 {
		t.Fatalf("Dedup() kept %d mounts, want 2: %+v", len(deduped), deduped)
	}
	if deduped[0].Source != "/home/alice" || deduped[0].Mode != ModeRSlave {
		t.Errorf("first mount for /home/alice should win, got %+v", deduped[0])
	}
	if !deduped.Contains("/tmp") || deduped.Contains("/srv/home") {
		t.Errorf("Contains() mismatch for %+v", deduped)
	}
}
