package domain

import "testing"

func TestSessionIsLoading(t *testing.T) {
	tests := []struct {
		state AuthState
		want  bool
	}{
		{StateUnknown, true},
		{StateAuthenticating, true},
		{StateUnauthenticated, false},
		{StateAuthenticated, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.state), func(t *testing.T) {
			s := Session{State: tt.state}
			if got := s.IsLoading(); got != tt.want {
				t.Errorf("IsLoading() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSessionIsAuthenticated(t *testing.T) {
	if (Session{}).IsAuthenticated() {
		t.Error("empty session should not be authenticated")
	}
	if !(Session{Token: "abc123", State: StateAuthenticated}).IsAuthenticated() {
		t.Error("session with token should be authenticated")
	}
}
