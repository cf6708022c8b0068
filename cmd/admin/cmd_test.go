package main

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tkmproject/tkm-api/internal/models"
)

type creatorStub struct {
	email, name, pwd string
	err              error
}

func (s *creatorStub) CreateAdmin(_ context.Context, email, name, pwd string) (*models.AdminUser, error) {
	s.email, s.name, s.pwd = email, name, pwd
	if s.err != nil {
		return nil, s.err
	}
	return &models.AdminUser{ID: "admin-1", Email: email}, nil
}

func withPassword(t *testing.T, pwd string, err error) {
	t.Helper()
	original := readPasswordFunc
	readPasswordFunc = func(int) ([]byte, error) { return []byte(pwd), err }
	t.Cleanup(func() { readPasswordFunc = original })
}

func TestCommandLineAddUser(t *testing.T) {
	tests := []struct {
		name       string
		args       []string // without program name
		password   string
		readErr    error
		createErr  error
		wantErr    error
		wantErrStr string
	}{
		{name: "no subcommand", args: nil, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"lol"}, wantErr: errHelp},
		{name: "missing email", args: []string{"adduser"}, wantErr: errHelp},
		{name: "empty password", args: []string{"adduser", "-email", "a@tkmproject.org"}, wantErr: errHelp},
		{name: "read failure", args: []string{"adduser", "-email", "a@tkmproject.org"}, readErr: errors.New("not a terminal"), wantErrStr: "not a terminal"},
		{name: "create failure", args: []string{"adduser", "-email", "a@tkmproject.org"}, password: "long-enough", createErr: errors.New("duplicate"), wantErrStr: "duplicate"},
		{name: "created", args: []string{"adduser", "-email", "a@tkmproject.org", "-name", "Site Admin"}, password: "long-enough"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			stub := &creatorStub{err: tc.createErr}
			out := &bytes.Buffer{}
			cli := &commandLine{admins: stub, out: out}
			withPassword(t, tc.password, tc.readErr)

			err := cli.run(append([]string{"admin"}, tc.args...))

			switch {
			case tc.wantErr != nil:
				assert.ErrorIs(t, err, tc.wantErr)
			case tc.wantErrStr != "":
				require.Error(t, err)
				assert.Equal(t, tc.wantErrStr, err.Error())
			default:
				require.NoError(t, err)
				assert.Equal(t, "a@tkmproject.org", stub.email)
				assert.Equal(t, "Site Admin", stub.name)
				assert.Equal(t, "long-enough", stub.pwd)
				assert.Contains(t, out.String(), "admin a@tkmproject.org created")
			}
		})
	}
}
