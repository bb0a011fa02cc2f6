package handlers

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"

	"typeb/internal/security"
)

// OAuthProvider defines provider configuration and metadata
type OAuthProvider struct {
	Name        string
	Config      *oauth2.Config
	UserInfoURL string
	AuthParams  map[string]string
}

type oauthUserInfo struct {
	Subject string
	Email   string
	Name    string
}

// StartOAuth initiates the OAuth flow for a provider
func (h *AuthHandler) StartOAuth(w http.ResponseWriter, r *http.Request) {
	providerKey := r.PathValue("provider")
	provider, ok := h.oauthProviders[providerKey]
	if !ok || provider.Config == nil || provider.Config.ClientID == "" || provider.Config.ClientSecret == "" {
		writeJSON(w, http.StatusBadRequest, APIResponse{Success: false, Message: "oauth provider not configured"})
		return
	}

	state := security.GenerateRefreshToken()
	nonce := security.GenerateRefreshToken()

	setTempCookie(w, "oauth_state", state, 10*time.Minute)
	setTempCookie(w, "oauth_nonce", nonce, 10*time.Minute)

	config := *provider.Config
	config.RedirectURL = h.oauthRedirectURL(providerKey)

	options := []oauth2.AuthCodeOption{oauth2.AccessTypeOnline}
	for key, value := range provider.AuthParams {
		options = append(options, oauth2.SetAuthURLParam(key, value))
	}
	if providerKey == "apple" {
		options = append(options, oauth2.SetAuthURLParam("nonce", nonce))
	}

	http.Redirect(w, r, config.AuthCodeURL(state, options...), http.StatusFound)
}

// OAuthCallback handles the provider callback and returns a token pair
func (h *AuthHandler) OAuthCallback(w http.ResponseWriter, r *http.Request) {
	providerKey := r.PathValue("provider")
	provider, ok := h.oauthProviders[providerKey]
	if !ok || provider.Config == nil || provider.Config.ClientID == "" || provider.Config.ClientSecret == "" {
		writeJSON(w, http.StatusBadRequest, APIResponse{Success: false, Message: "oauth provider not configured"})
		return
	}

	state := r.URL.Query().Get("state")
	code := r.URL.Query().Get("code")
	if code == "" {
		writeJSON(w, http.StatusBadRequest, APIResponse{Success: false, Message: "missing authorization code"})
		return
	}

	stateCookie, err := r.Cookie("oauth_state")
	if err != nil || stateCookie.Value == "" || stateCookie.Value != state {
		writeJSON(w, http.StatusBadRequest, APIResponse{Success: false, Message: "invalid oauth state"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	config := *provider.Config
	config.RedirectURL = h.oauthRedirectURL(providerKey)

	token, err := config.Exchange(ctx, code)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, APIResponse{Success: false, Message: "failed to exchange oauth code"})
		return
	}

	userInfo, err := fetchOAuthUserInfo(ctx, providerKey, provider, token, r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, APIResponse{Success: false, Message: err.Error()})
		return
	}

	clearTempCookie(w, "oauth_state")
	clearTempCookie(w, "oauth_nonce")

	pair, user, err := h.authService.OAuthLogin(providerKey, userInfo.Subject, userInfo.Email, userInfo.Name)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondData(w, http.StatusOK, map[string]interface{}{
		"user":   newUserView(user),
		"tokens": newTokenView(pair),
	})
}

func fetchOAuthUserInfo(ctx context.Context, providerKey string, provider OAuthProvider, token *oauth2.Token, r *http.Request) (oauthUserInfo, error) {
	switch providerKey {
	case "google":
		return fetchGoogleUser(ctx, provider, token)
	case "apple":
		return fetchAppleUser(ctx, provider, token, r)
	default:
		return oauthUserInfo{}, errors.New("unsupported oauth provider")
	}
}

func fetchGoogleUser(ctx context.Context, provider OAuthProvider, token *oauth2.Token) (oauthUserInfo, error) {
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(token))
	resp, err := client.Get(provider.UserInfoURL)
	if err != nil {
		return oauthUserInfo{}, errors.New("failed to fetch Google user info")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return oauthUserInfo{}, errors.New("failed to fetch Google user info")
	}

	var payload struct {
		ID    string `json:"id"`
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return oauthUserInfo{}, errors.New("failed to parse Google user info")
	}

	return oauthUserInfo{Subject: payload.ID, Email: payload.Email, Name: payload.Name}, nil
}

func fetchAppleUser(ctx context.Context, provider OAuthProvider, token *oauth2.Token, r *http.Request) (oauthUserInfo, error) {
	idToken, _ := token.Extra("id_token").(string)
	if idToken == "" {
		return oauthUserInfo{}, errors.New("missing Apple id_token")
	}

	nonce := ""
	if cookie, err := r.Cookie("oauth_nonce"); err == nil {
		nonce = cookie.Value
	}

	claims, err := parseAppleIDToken(ctx, idToken, provider.Config.ClientID, nonce)
	if err != nil {
		return oauthUserInfo{}, err
	}

	return oauthUserInfo{Subject: claims.Subject, Email: claims.Email}, nil
}

func (h *AuthHandler) oauthRedirectURL(providerKey string) string {
	return fmt.Sprintf("%s/api/v1/auth/oauth/%s/callback", strings.TrimRight(h.oauthRedirectBaseURL, "/"), providerKey)
}

func setTempCookie(w http.ResponseWriter, name, value string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(ttl),
		MaxAge:   int(ttl.Seconds()),
	})
}

func clearTempCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}

type appleTokenClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
	Nonce string `json:"nonce"`
}

type appleParsedClaims struct {
	Subject string
	Email   string
}

func parseAppleIDToken(ctx context.Context, idToken, clientID, nonce string) (appleParsedClaims, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{"RS256"}))
	claims := &appleTokenClaims{}

	parsedToken, err := parser.ParseWithClaims(idToken, claims, func(token *jwt.Token) (interface{}, error) {
		kid, _ := token.Header["kid"].(string)
		if kid == "" {
			return nil, errors.New("missing key id")
		}
		return fetchApplePublicKey(ctx, kid)
	})
	if err != nil || !parsedToken.Valid {
		return appleParsedClaims{}, errors.New("invalid Apple token")
	}

	if claims.Issuer != "https://appleid.apple.com" {
		return appleParsedClaims{}, errors.New("invalid Apple issuer")
	}
	if !audienceContains(claims.Audience, clientID) {
		return appleParsedClaims{}, errors.New("invalid Apple audience")
	}
	if nonce != "" && claims.Nonce != "" && claims.Nonce != nonce {
		return appleParsedClaims{}, errors.New("invalid Apple nonce")
	}
	if claims.Email == "" {
		return appleParsedClaims{}, errors.New("Apple email not available")
	}

	return appleParsedClaims{Subject: claims.Subject, Email: claims.Email}, nil
}

func audienceContains(audience jwt.ClaimStrings, value string) bool {
	for _, entry := range audience {
		if entry == value {
			return true
		}
	}
	return false
}

type appleJWK struct {
	Keys []appleJWKKey `json:"keys"`
}

type appleJWKKey struct {
	Kid string `json:"kid"`
	Kty string `json:"kty"`
	Alg string `json:"alg"`
	N   string `json:"n"`
	E   string `json:"e"`
}

func fetchApplePublicKey(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, "https://appleid.apple.com/auth/keys", nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(request)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.New("failed to fetch Apple public keys")
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var jwk appleJWK
	if err := json.Unmarshal(body, &jwk); err != nil {
		return nil, err
	}

	for _, key := range jwk.Keys {
		if key.Kid != kid {
			continue
		}
		if key.Kty != "RSA" {
			return nil, errors.New("unexpected key type")
		}
		modulusBytes, err := base64.RawURLEncoding.DecodeString(key.N)
		if err != nil {
			return nil, err
		}
		exponentBytes, err := base64.RawURLEncoding.DecodeString(key.E)
		if err != nil {
			return nil, err
		}
		exponent := 0
		for _, b := range exponentBytes {
			exponent = exponent*256 + int(b)
		}
		return &rsa.PublicKey{
			N: new(big.Int).SetBytes(modulusBytes),
			E: exponent,
		}, nil
	}

	return nil, errors.New("Apple public key not found")
}
