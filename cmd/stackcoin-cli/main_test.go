package main

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/stackcoin/stackcoin-go/internal/testutil"
	"github.com/stackcoin/stackcoin-go/pkg/client"
)

func TestParseID(t *testing.T) {
	tests := []struct {
		input   string
		want    int64
		wantErr bool
	}{
		{"42", 42, false},
		{"0", 0, false},
		{"-7", -7, false},
		{"abc", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := parseID(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("parseID(%q) should fail", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseID(%q) failed: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("parseID(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestRunCommands(t *testing.T) {
	mock := testutil.NewMockLedger()
	defer mock.Close()
	mock.AddUser(client.User{ID: 2, Username: "bob"}, 100)

	ctx := context.Background()
	s, err := client.Open(ctx, mock.Config())
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()

	tests := []struct {
		name    string
		command string
		args    []string
		wantErr bool
	}{
		{"own balance", "balance", nil, false},
		{"other balance", "balance", []string{"2"}, false},
		{"send", "send", []string{"2", "10", "test"}, false},
		{"send missing args", "send", []string{"2"}, true},
		{"request", "request", []string{"2", "5"}, false},
		{"transactions", "transactions", nil, false},
		{"requests", "requests", nil, false},
		{"users", "users", nil, false},
		{"unknown", "frobnicate", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := run(ctx, s, tt.command, tt.args)
			if tt.wantErr && err == nil {
				t.Error("expected an error")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("run(%s) failed: %v", tt.command, err)
			}
		})
	}
}

func TestRunAcceptDeny(t *testing.T) {
	mock := testutil.NewMockLedger()
	defer mock.Close()
	mock.AddUser(client.User{ID: 2, Username: "bob"}, 100)
	acceptID := mock.AddRequest(2, testutil.SelfID, 10, client.RequestPending)
	denyID := mock.AddRequest(2, testutil.SelfID, 10, client.RequestPending)

	ctx := context.Background()
	s, err := client.Open(ctx, mock.Config())
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()

	if err := run(ctx, s, "accept", []string{strconv.FormatInt(acceptID, 10)}); err != nil {
		t.Errorf("accept failed: %v", err)
	}
	if err := run(ctx, s, "deny", []string{strconv.FormatInt(denyID, 10)}); err != nil {
		t.Errorf("deny failed: %v", err)
	}

	// A second accept must surface the state error.
	err = run(ctx, s, "accept", []string{strconv.FormatInt(acceptID, 10)})
	if !errors.Is(err, client.ErrInvalidState) {
		t.Errorf("second accept = %v, want ErrInvalidState", err)
	}
}
