package models

import (
	"errors"
	"testing"
	"time"
)

func TestApplyQAResultTransitions(t *testing.T) {
	tests := []struct {
		name    string
		from    string
		passed  bool
		want    string
		wantErr error
	}{
		{"draft pass", DraftStatusDraft, true, DraftStatusQAPassed, nil},
		{"draft fail", DraftStatusDraft, false, DraftStatusQAPending, nil},
		{"pending pass", DraftStatusQAPending, true, DraftStatusQAPassed, nil},
		{"pending fail again", DraftStatusQAPending, false, DraftStatusQAPending, nil},
		{"rerun after pass can regress", DraftStatusQAPassed, false, DraftStatusQAPending, nil},
		{"live never changes", DraftStatusLive, true, DraftStatusLive, ErrAlreadyLive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := &OnboardingDraft{Status: tt.from}
			err := d.ApplyQAResult(QAResults{Passed: tt.passed, RanAt: time.Now()})
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if d.Status != tt.want {
				t.Fatalf("status = %q, want %q", d.Status, tt.want)
			}
		})
	}
}

func TestApplyQAResultAttachesVerdict(t *testing.T) {
	d := &OnboardingDraft{Status: DraftStatusDraft}
	res := QAResults{Passed: false, Errors: []string{"no crisis response"}, RanAt: time.Now()}

	if err := d.ApplyQAResult(res); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.QAResults == nil || len(d.QAResults.Errors) != 1 {
		t.Fatalf("verdict not attached: %+v", d.QAResults)
	}
}

func TestGoLive(t *testing.T) {
	tests := []struct {
		name    string
		from    string
		wantErr error
	}{
		{"from draft", DraftStatusDraft, ErrNotQAPassed},
		{"from qa_pending", DraftStatusQAPending, ErrNotQAPassed},
		{"from qa_passed", DraftStatusQAPassed, nil},
		{"already live", DraftStatusLive, ErrAlreadyLive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := &OnboardingDraft{Status: tt.from}
			err := d.GoLive("<script></script>")
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				if d.Status != tt.from {
					t.Fatalf("failed go-live changed status to %q", d.Status)
				}
				return
			}
			if d.Status != DraftStatusLive {
				t.Fatalf("status = %q, want live", d.Status)
			}
			if d.EmbedCode == "" || d.WentLiveAt == nil {
				t.Fatalf("embed code or timestamp missing after go-live")
			}
		})
	}
}

func TestCanRegenerate(t *testing.T) {
	want := map[string]bool{
		DraftStatusDraft:     true,
		DraftStatusQAPending: true,
		DraftStatusQAPassed:  false,
		DraftStatusLive:      false,
	}

	for status, expect := range want {
		d := &OnboardingDraft{Status: status}
		if got := d.CanRegenerate(); got != expect {
			t.Errorf("CanRegenerate from %q = %v, want %v", status, got, expect)
		}
	}
}

func TestCanGoLive(t *testing.T) {
	for _, status := range []string{DraftStatusDraft, DraftStatusQAPending, DraftStatusLive} {
		d := &OnboardingDraft{Status: status}
		if d.CanGoLive() {
			t.Errorf("CanGoLive from %q should be false", status)
		}
	}
	d := &OnboardingDraft{Status: DraftStatusQAPassed}
	if !d.CanGoLive() {
		t.Errorf("CanGoLive from qa_passed should be true")
	}
}
