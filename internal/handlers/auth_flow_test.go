// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pquerna/otp/totp"

	"blogium/internal/session"
)

func postForm(handler http.HandlerFunc, target string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	handler(rr, req)
	return rr
}

func TestRegistration(t *testing.T) {
	env := newTestEnv(t)
	username := "signup-" + uuid.NewString()[:8]
	t.Cleanup(func() { env.DB.Exec("DELETE FROM users WHERE username = $1", username) })

	t.Run("valid signup creates the account", func(t *testing.T) {
		rr := postForm(env.Auth.RegisterSubmit, "/auth/register", url.Values{
			"username":         {username},
			"password":         {"longenough1"},
			"password_confirm": {"longenough1"},
			"first_name":       {"Sign"},
			"last_name":        {"Up"},
			"email":            {username + "@example.test"},
		})

		if rr.Code != http.StatusSeeOther {
			t.Fatalf("status: got %d, want 303; body: %s", rr.Code, rr.Body.String())
		}
		if loc := rr.Header().Get("Location"); loc != "/auth/login" {
			t.Errorf("Location: got %q, want /auth/login", loc)
		}

		u, err := env.UserStore.FindByUsername(username)
		if err != nil {
			t.Fatalf("FindByUsername: %v", err)
		}
		if u == nil {
			t.Fatal("account not created")
		}
		if !env.UserStore.CheckPassword(u, "longenough1") {
			t.Error("stored password does not verify")
		}
	})

	t.Run("duplicate username is rejected", func(t *testing.T) {
		rr := postForm(env.Auth.RegisterSubmit, "/auth/register", url.Values{
			"username":         {username},
			"password":         {"longenough1"},
			"password_confirm": {"longenough1"},
		})

		if rr.Code != http.StatusOK {
			t.Fatalf("status: got %d, want 200 (form redisplay)", rr.Code)
		}
		if !strings.Contains(rr.Body.String(), "already taken") {
			t.Error("duplicate username message missing")
		}
	})

	t.Run("mismatched confirmation is rejected", func(t *testing.T) {
		rr := postForm(env.Auth.RegisterSubmit, "/auth/register", url.Values{
			"username":         {"mismatch-" + uuid.NewString()[:8]},
			"password":         {"longenough1"},
			"password_confirm": {"different1"},
		})

		if rr.Code != http.StatusOK {
			t.Fatalf("status: got %d, want 200 (form redisplay)", rr.Code)
		}
		if !strings.Contains(rr.Body.String(), "Passwords do not match.") {
			t.Error("mismatch message missing")
		}
	})

	t.Run("short password is rejected", func(t *testing.T) {
		rr := postForm(env.Auth.RegisterSubmit, "/auth/register", url.Values{
			"username": {"short-" + uuid.NewString()[:8]},
			"password": {"short"},
		})

		if rr.Code != http.StatusOK {
			t.Fatalf("status: got %d, want 200 (form redisplay)", rr.Code)
		}
		if !strings.Contains(rr.Body.String(), "at least") {
			t.Error("password length message missing")
		}
	})
}

func TestLoginLogout(t *testing.T) {
	env := newTestEnv(t)
	user := testUser(t, env)

	t.Run("wrong password fails", func(t *testing.T) {
		rr := postForm(env.Auth.LoginSubmit, "/auth/login", url.Values{
			"username": {user.Username},
			"password": {"wrongwrong"},
		})

		if rr.Code != http.StatusOK {
			t.Fatalf("status: got %d, want 200 (form redisplay)", rr.Code)
		}
		if !strings.Contains(rr.Body.String(), "Invalid username or password.") {
			t.Error("login failure message missing")
		}
		if len(rr.Result().Cookies()) != 0 {
			t.Error("no session cookie should be set on failure")
		}
	})

	t.Run("unknown username fails the same way", func(t *testing.T) {
		rr := postForm(env.Auth.LoginSubmit, "/auth/login", url.Values{
			"username": {"no-such-user-" + uuid.NewString()[:8]},
			"password": {"wrongwrong"},
		})

		if rr.Code != http.StatusOK {
			t.Fatalf("status: got %d, want 200 (form redisplay)", rr.Code)
		}
		if !strings.Contains(rr.Body.String(), "Invalid username or password.") {
			t.Error("login failure message missing")
		}
	})

	t.Run("correct password logs in and logout clears the session", func(t *testing.T) {
		rr := postForm(env.Auth.LoginSubmit, "/auth/login", url.Values{
			"username": {user.Username},
			"password": {"password123"},
		})

		if rr.Code != http.StatusSeeOther {
			t.Fatalf("status: got %d, want 303", rr.Code)
		}
		if loc := rr.Header().Get("Location"); loc != "/" {
			t.Errorf("Location: got %q, want /", loc)
		}

		var cookie *http.Cookie
		for _, c := range rr.Result().Cookies() {
			if c.Name == session.CookieName {
				cookie = c
			}
		}
		if cookie == nil {
			t.Fatal("session cookie not set")
		}

		// The session is retrievable and already past the 2FA gate.
		getReq := httptest.NewRequest(http.MethodGet, "/", nil)
		getReq.AddCookie(cookie)
		sess, err := env.Sessions.Get(getReq.Context(), getReq)
		if err != nil {
			t.Fatalf("session Get: %v", err)
		}
		if sess == nil || sess.UserID != user.ID {
			t.Fatalf("session data: %+v", sess)
		}
		if !sess.Authenticated() {
			t.Error("session should be authenticated without 2FA")
		}

		// Logout.
		outReq := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
		outReq.AddCookie(cookie)
		outRR := httptest.NewRecorder()
		env.Auth.Logout(outRR, outReq)

		if outRR.Code != http.StatusSeeOther {
			t.Fatalf("logout status: got %d, want 303", outRR.Code)
		}
		gone, err := env.Sessions.Get(getReq.Context(), getReq)
		if err != nil {
			t.Fatalf("session Get after logout: %v", err)
		}
		if gone != nil {
			t.Error("session should be destroyed after logout")
		}
	})
}

func TestLoginWithTwoFactor(t *testing.T) {
	env := newTestEnv(t)
	user := testUser(t, env)

	key, err := totp.Generate(totp.GenerateOpts{Issuer: "test", AccountName: user.Username})
	if err != nil {
		t.Fatalf("totp.Generate: %v", err)
	}
	if err := env.UserStore.SetTOTPSecret(user.ID, key.Secret()); err != nil {
		t.Fatalf("SetTOTPSecret: %v", err)
	}
	if err := env.UserStore.EnableTOTP(user.ID); err != nil {
		t.Fatalf("EnableTOTP: %v", err)
	}

	rr := postForm(env.Auth.LoginSubmit, "/auth/login", url.Values{
		"username": {user.Username},
		"password": {"password123"},
	})

	if rr.Code != http.StatusSeeOther {
		t.Fatalf("status: got %d, want 303", rr.Code)
	}
	if loc := rr.Header().Get("Location"); loc != "/auth/2fa" {
		t.Errorf("Location: got %q, want /auth/2fa", loc)
	}

	var cookie *http.Cookie
	for _, c := range rr.Result().Cookies() {
		if c.Name == session.CookieName {
			cookie = c
		}
	}
	if cookie == nil {
		t.Fatal("session cookie not set")
	}

	getReq := httptest.NewRequest(http.MethodGet, "/", nil)
	getReq.AddCookie(cookie)
	sess, err := env.Sessions.Get(getReq.Context(), getReq)
	if err != nil {
		t.Fatalf("session Get: %v", err)
	}
	if sess == nil {
		t.Fatal("session missing")
	}
	if sess.Authenticated() {
		t.Error("session must not be authenticated before the code check")
	}

	t.Run("wrong code is rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/auth/2fa", strings.NewReader(url.Values{"code": {"000000"}}.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.AddCookie(cookie)
		req = req.WithContext(ctxWithSession(req.Context(), sess))
		vrr := httptest.NewRecorder()
		env.Auth.TwoFAVerifySubmit(vrr, req)

		if vrr.Code != http.StatusOK {
			t.Fatalf("status: got %d, want 200 (form redisplay)", vrr.Code)
		}
		if !strings.Contains(vrr.Body.String(), "Invalid code") {
			t.Error("invalid code message missing")
		}
	})

	t.Run("valid code completes the login", func(t *testing.T) {
		code, err := totp.GenerateCode(key.Secret(), time.Now())
		if err != nil {
			t.Fatalf("GenerateCode: %v", err)
		}

		req := httptest.NewRequest(http.MethodPost, "/auth/2fa", strings.NewReader(url.Values{"code": {code}}.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.AddCookie(cookie)
		req = req.WithContext(ctxWithSession(req.Context(), sess))
		vrr := httptest.NewRecorder()
		env.Auth.TwoFAVerifySubmit(vrr, req)

		if vrr.Code != http.StatusSeeOther {
			t.Fatalf("status: got %d, want 303", vrr.Code)
		}
		if loc := vrr.Header().Get("Location"); loc != "/" {
			t.Errorf("Location: got %q, want /", loc)
		}

		fresh, err := env.Sessions.Get(getReq.Context(), getReq)
		if err != nil {
			t.Fatalf("session Get: %v", err)
		}
		if !fresh.Authenticated() {
			t.Error("session should be authenticated after the code check")
		}
	})
}
