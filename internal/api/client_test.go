package api

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *APIClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewAPIClient(Options{BaseURL: srv.URL, Timeout: 2 * time.Second}, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestLogin(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/user/login" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/x-www-form-urlencoded" {
			t.Errorf("Content-Type = %q", ct)
		}
		if ua := r.Header.Get("User-Agent"); ua != "IDM App (iOS)" {
			t.Errorf("User-Agent = %q", ua)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("ParseForm: %v", err)
		}
		if r.PostForm.Get("username") != "user@example.com" || r.PostForm.Get("password") != "hash" {
			t.Errorf("form = %v", r.PostForm)
		}
		w.Write([]byte(`{"installations":[{"name":"Home","id":42}],"token":"abc"}`))
	})

	resp, err := client.Login(context.Background(), "user@example.com", "hash")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if resp.Token != "abc" {
		t.Errorf("Token = %q, want abc", resp.Token)
	}
	if resp.Installations[0].Name != "Home" || resp.Installations[0].ID.Text != "42" {
		t.Errorf("Installation = %+v", resp.Installations[0])
	}
}

func TestLogin_Failures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{"not found", http.StatusNotFound, `{}`, nil},
		{"not json", http.StatusOK, `<html>`, ErrMalformed},
		{"no token", http.StatusOK, `{"installations":[{"name":"Home","id":42}]}`, ErrMalformed},
		{"no installations", http.StatusOK, `{"installations":[],"token":"abc"}`, ErrMalformed},
		{"no id", http.StatusOK, `{"installations":[{"name":"Home"}],"token":"abc"}`, ErrMalformed},
		{"no name", http.StatusOK, `{"installations":[{"id":42}],"token":"abc"}`, ErrMalformed},
		{"blank name", http.StatusOK, `{"installations":[{"id":42,"name":"  "}],"token":"abc"}`, ErrMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			_, err := client.Login(context.Background(), "u", "p")
			if err == nil {
				t.Fatal("Login() expected error, got nil")
			}

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Login() error = %v, want %v", err, tt.wantErr)
				}
				return
			}

			var se *StatusError
			if !errors.As(err, &se) || se.Status != tt.status {
				t.Errorf("Login() error = %v, want StatusError %d", err, tt.status)
			}
		})
	}
}

func TestLogin_Transport(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	client := NewAPIClient(Options{BaseURL: url, Timeout: time.Second}, slog.New(slog.NewTextHandler(io.Discard, nil)))

	_, err := client.Login(context.Background(), "u", "p")
	if !errors.Is(err, ErrTransport) {
		t.Errorf("Login() error = %v, want ErrTransport", err)
	}
}

func TestGetValues(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/installation/values" {
			t.Errorf("path = %s", r.URL.Path)
		}
		r.ParseForm()
		if r.PostForm.Get("token") != "abc" || r.PostForm.Get("installation") != "42" {
			t.Errorf("form = %v", r.PostForm)
		}
		w.Write([]byte(`{"mode":"icon_12","temp_water":"45.0","circuits":[{"mode":"icon_11"}]}`))
	})

	values, err := client.GetValues(context.Background(), "abc", "42")
	if err != nil {
		t.Fatalf("GetValues() error = %v", err)
	}
	if values.Mode.Text != "icon_12" || values.TempWater.Text != "45.0" || len(values.Circuits) != 1 {
		t.Errorf("values = %+v", values)
	}
}

func TestSendCommand(t *testing.T) {
	tests := []struct {
		name        string
		cmd         Command
		wantCircuit string
		hasCircuit  bool
	}{
		{"circuit", Command{Name: "circuit_mode", Value: 3, Circuit: func() *int { i := 0; return &i }()}, "0", true},
		{"system", Command{Name: "system_mode", Value: 1}, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/api/installation/command" {
					t.Errorf("path = %s", r.URL.Path)
				}
				r.ParseForm()
				if r.PostForm.Get("command") != tt.cmd.Name {
					t.Errorf("command = %q", r.PostForm.Get("command"))
				}
				_, has := r.PostForm["circuit"]
				if has != tt.hasCircuit || r.PostForm.Get("circuit") != tt.wantCircuit {
					t.Errorf("circuit = %v (present %v)", r.PostForm.Get("circuit"), has)
				}
				w.Write([]byte(`{"status":true}`))
			})

			resp, err := client.SendCommand(context.Background(), "abc", "42", tt.cmd)
			if err != nil {
				t.Fatalf("SendCommand() error = %v", err)
			}
			if !resp.Status {
				t.Error("Status = false, want true")
			}
		})
	}
}
