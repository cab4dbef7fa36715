package domain

import "testing"

func TestTransferState_CanTransitionTo(t *testing.T) {
	allowed := map[TransferState][]TransferState{
		TransferPending:         {TransferLocked, TransferFailed},
		TransferLocked:          {TransferProofGenerated, TransferFailedAfterLock},
		TransferProofGenerated:  {TransferReleased, TransferFailedAfterLock},
		TransferFailedAfterLock: {TransferUnlocked},
		TransferReleased:        {},
		TransferFailed:          {},
		TransferUnlocked:        {},
	}

	all := []TransferState{
		TransferPending, TransferLocked, TransferProofGenerated,
		TransferReleased, TransferFailed, TransferFailedAfterLock,
		TransferUnlocked,
	}

	for from, nexts := range allowed {
		legal := make(map[TransferState]bool, len(nexts))
		for _, n := range nexts {
			legal[n] = true
		}
		for _, to := range all {
			if got := from.CanTransitionTo(to); got != legal[to] {
				t.Errorf("%s -> %s = %v, want %v", from, to, got, legal[to])
			}
		}
	}
}

func TestTransferState_TerminalAndInFlight(t *testing.T) {
	cases := []struct {
		state    TransferState
		terminal bool
		inFlight bool
	}{
		{TransferPending, false, true},
		{TransferLocked, false, true},
		{TransferProofGenerated, false, true},
		{TransferReleased, true, false},
		{TransferFailed, true, false},
		{TransferFailedAfterLock, false, false},
		{TransferUnlocked, true, false},
	}

	for _, tc := range cases {
		if got := tc.state.Terminal(); got != tc.terminal {
			t.Errorf("%s.Terminal() = %v, want %v", tc.state, got, tc.terminal)
		}
		if got := tc.state.InFlight(); got != tc.inFlight {
			t.Errorf("%s.InFlight() = %v, want %v", tc.state, got, tc.inFlight)
		}
	}
}
