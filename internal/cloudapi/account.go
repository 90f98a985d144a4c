package cloudapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// 账号API（非OpenAPI）：登录换取 AWS IoT MQTT 的连接凭证。
// 参考 homebridge-govee / govee2mqtt 的逆向实现。

const (
	// LoginURL Govee账号登录接口
	LoginURL = "https://app2.govee.com/account/rest/account/v1/login"
	// clientType 固定为Android客户端
	clientType = "1"
	// DefaultIoTEndpoint 账号响应缺省时使用的IoT接入点
	DefaultIoTEndpoint = "aqm3wd1qlc3dy-ats.iot.us-east-1.amazonaws.com"
)

var (
	// ErrAuthFailed 账号或密码错误
	ErrAuthFailed = errors.New("govee auth failed")
	// ErrMissingIoTCredentials 登录成功但响应缺少IoT凭证
	ErrMissingIoTCredentials = errors.New("missing iot credentials in login response")
)

// IoTCredentials AWS IoT MQTT 连接凭证
type IoTCredentials struct {
	Token        string
	AccountTopic string // 账号级MQTT主题
	Endpoint     string // IoT接入点域名
	ClientID     string
	CertPEM      string // 客户端证书（登录响应字段"A"）
	KeyPEM       string // 客户端私钥（登录响应字段"B"）
	CAPEM        string // 可选CA证书
}

// Valid 凭证是否完整可用
func (c IoTCredentials) Valid() bool {
	return c.Token != "" && c.CertPEM != "" && c.KeyPEM != "" && c.AccountTopic != ""
}

// AuthClient 账号认证客户端
type AuthClient struct {
	http     *http.Client
	loginURL string
}

// NewAuthClient 创建认证客户端
func NewAuthClient() *AuthClient {
	return &AuthClient{
		http:     &http.Client{Timeout: 15 * time.Second},
		loginURL: LoginURL,
	}
}

type loginRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	Client     string `json:"client"`
	ClientType string `json:"clientType"`
}

type loginResponse struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Client  struct {
		Token         string `json:"token"`
		Topic         string `json:"topic"`
		Endpoint      string `json:"endpoint"`
		A             string `json:"A"` // 证书
		B             string `json:"B"` // 私钥
		CACertificate string `json:"caCertificate"`
	} `json:"client"`
}

// Login 登录并换取IoT凭证
// clientID为32位hex，留空时自动生成
func (a *AuthClient) Login(ctx context.Context, email, password, clientID string) (*IoTCredentials, error) {
	if clientID == "" {
		clientID = strings.ReplaceAll(uuid.NewString(), "-", "")
	}

	body, err := json.Marshal(loginRequest{
		Email:      email,
		Password:   password,
		Client:     clientID,
		ClientType: clientType,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.loginURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := a.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("login request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read login response: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, fmt.Errorf("%w: invalid email or password", ErrAuthFailed)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("login failed: http %d: %s", resp.StatusCode, respBody)
	}

	var data loginResponse
	if err := json.Unmarshal(respBody, &data); err != nil {
		return nil, fmt.Errorf("unmarshal login response: %w", err)
	}
	if data.Status != 200 {
		if data.Status == 401 || strings.Contains(strings.ToLower(data.Message), "password") {
			return nil, fmt.Errorf("%w: %s", ErrAuthFailed, data.Message)
		}
		return nil, fmt.Errorf("login failed: status %d: %s", data.Status, data.Message)
	}

	endpoint := data.Client.Endpoint
	if endpoint == "" {
		endpoint = DefaultIoTEndpoint
	}

	creds := &IoTCredentials{
		Token:        data.Client.Token,
		AccountTopic: data.Client.Topic,
		Endpoint:     endpoint,
		ClientID:     clientID,
		CertPEM:      formatPEM(data.Client.A, "CERTIFICATE"),
		KeyPEM:       formatPEM(data.Client.B, "RSA PRIVATE KEY"),
		CAPEM:        data.Client.CACertificate,
	}
	if !creds.Valid() {
		return nil, ErrMissingIoTCredentials
	}
	return creds, nil
}

// formatPEM 把裸base64证书/私钥补成PEM格式
// Govee偶尔返回不带PEM头的裸数据，TLS库要求带头尾并按64列折行
func formatPEM(data, pemType string) string {
	if data == "" {
		return ""
	}
	if strings.HasPrefix(strings.TrimSpace(data), "-----BEGIN") {
		return data
	}

	clean := strings.NewReplacer("\n", "", "\r", "", " ", "").Replace(data)
	var b strings.Builder
	fmt.Fprintf(&b, "-----BEGIN %s-----\n", pemType)
	for i := 0; i < len(clean); i += 64 {
		end := min(i+64, len(clean))
		b.WriteString(clean[i:end])
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "-----END %s-----\n", pemType)
	return b.String()
}
