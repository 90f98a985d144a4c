package iotmqtt

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/govee-lab/govee-bridge/internal/cloudapi"
	cfgpkg "github.com/govee-lab/govee-bridge/internal/config"
	"github.com/govee-lab/govee-bridge/internal/metrics"
	"github.com/govee-lab/govee-bridge/internal/protocol/blepkt"
)

// AWS IoT 透传通道：把base64命令经 ptReal 消息发到设备MQTT主题。
// 参考 govee2mqtt 的逆向协议。

var (
	// ErrNotConnected MQTT未连接
	ErrNotConnected = errors.New("iot mqtt not connected")
	// ErrConnectTimeout 连接超时
	ErrConnectTimeout = errors.New("iot mqtt connect timeout")
)

// ptRealMessage ptReal透传消息信封
type ptRealMessage struct {
	Msg ptRealMsg `json:"msg"`
}

type ptRealMsg struct {
	Cmd         string     `json:"cmd"`        // 固定 "ptReal"
	CmdVersion  int        `json:"cmdVersion"` // 固定 0
	Data        ptRealData `json:"data"`
	Transaction string     `json:"transaction"`
	Type        int        `json:"type"` // 固定 1
}

type ptRealData struct {
	Command []string `json:"command"` // base64包列表，顺序即发送顺序
}

// Publisher AWS IoT MQTT 发布器
// 多包序列按顺序放进同一条ptReal消息，由设备按包内下标重组；
// 相邻消息之间用令牌桶限速，发得太快设备会静默丢包
type Publisher struct {
	client  mqtt.Client
	limiter *rate.Limiter
	logger  *zap.Logger
	metrics *metrics.AppMetrics
	wait    time.Duration
}

// NewPublisher 用账号凭证建立双向TLS的MQTT连接
func NewPublisher(cfg cfgpkg.IoTConfig, creds *cloudapi.IoTCredentials, m *metrics.AppMetrics, logger *zap.Logger) (*Publisher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	cert, err := tls.X509KeyPair([]byte(creds.CertPEM), []byte(creds.KeyPEM))
	if err != nil {
		return nil, fmt.Errorf("load iot keypair: %w", err)
	}

	tlsCfg := &tls.Config{Certificates: []tls.Certificate{cert}}
	if creds.CAPEM != "" {
		pool := x509.NewCertPool()
		if pool.AppendCertsFromPEM([]byte(creds.CAPEM)) {
			tlsCfg.RootCAs = pool
		}
	}

	endpoint := cfg.Endpoint
	if creds.Endpoint != "" {
		endpoint = creds.Endpoint
	}

	opts := mqtt.NewClientOptions().
		AddBroker(fmt.Sprintf("tls://%s:8883", endpoint)).
		SetClientID(creds.ClientID).
		SetTLSConfig(tlsCfg).
		SetAutoReconnect(true).
		SetConnectRetryInterval(5 * time.Second).
		SetOnConnectHandler(func(mqtt.Client) {
			logger.Info("iot mqtt connected", zap.String("endpoint", endpoint))
		}).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			logger.Warn("iot mqtt connection lost", zap.Error(err))
		})

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(cfg.ConnectWait) {
		return nil, ErrConnectTimeout
	}
	if token.Error() != nil {
		return nil, fmt.Errorf("iot mqtt connect: %w", token.Error())
	}

	framesPerSec := cfg.FramesPerSec
	if framesPerSec <= 0 {
		framesPerSec = 20
	}

	return &Publisher{
		client:  client,
		limiter: rate.NewLimiter(rate.Limit(framesPerSec), 1),
		logger:  logger,
		metrics: m,
		wait:    cfg.ConnectWait,
	}, nil
}

// PublishFrames 把一组20字节包按顺序透传给设备
// topic为设备级IoT主题；整个序列装进一条ptReal消息，不拆分不乱序
func (p *Publisher) PublishFrames(ctx context.Context, topic string, frames [][]byte) error {
	if p.client == nil || !p.client.IsConnected() {
		p.countPublish("error")
		return ErrNotConnected
	}

	if err := p.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("publish throttle: %w", err)
	}

	payload, err := json.Marshal(buildPtRealMessage(frames))
	if err != nil {
		return fmt.Errorf("marshal ptReal: %w", err)
	}

	token := p.client.Publish(topic, 0, false, payload)
	if !token.WaitTimeout(p.wait) {
		p.countPublish("error")
		return fmt.Errorf("publish %s: %w", topic, ErrConnectTimeout)
	}
	if token.Error() != nil {
		p.countPublish("error")
		return fmt.Errorf("publish %s: %w", topic, token.Error())
	}

	p.countPublish("ok")
	p.logger.Debug("ptReal published", zap.String("topic", topic), zap.Int("frames", len(frames)))
	return nil
}

// SubscribeState 订阅账号主题接收设备状态推送
// 消息格式对本服务不透明，原样交给handler
func (p *Publisher) SubscribeState(accountTopic string, handler func(payload []byte)) error {
	if p.client == nil || !p.client.IsConnected() {
		return ErrNotConnected
	}

	token := p.client.Subscribe(accountTopic, 0, func(_ mqtt.Client, msg mqtt.Message) {
		handler(msg.Payload())
	})
	if !token.WaitTimeout(p.wait) {
		return ErrConnectTimeout
	}
	return token.Error()
}

// Connected 当前是否连接（健康检查用）
func (p *Publisher) Connected() bool {
	return p.client != nil && p.client.IsConnected()
}

// Close 断开MQTT连接
func (p *Publisher) Close() {
	if p.client != nil && p.client.IsConnected() {
		p.client.Disconnect(250)
	}
}

func (p *Publisher) countPublish(result string) {
	if p.metrics != nil {
		p.metrics.PtRealSentTotal.WithLabelValues(result).Inc()
	}
}

// buildPtRealMessage 构造ptReal消息体，保持包顺序
func buildPtRealMessage(frames [][]byte) ptRealMessage {
	return ptRealMessage{
		Msg: ptRealMsg{
			Cmd:         "ptReal",
			CmdVersion:  0,
			Data:        ptRealData{Command: blepkt.EncodeFrames(frames)},
			Transaction: fmt.Sprintf("v_%d000", time.Now().UnixMilli()),
			Type:        1,
		},
	}
}
