package recognizer

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"cloud.google.com/go/auth/credentials"
	speech "cloud.google.com/go/speech/apiv2"
	speechpb "cloud.google.com/go/speech/apiv2/speechpb"
	"github.com/orcavozapp/orcavoz/internal/recognizer"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	speechAPIEndpointPort = 443
	// Phone microphone dictation: mono 16 kHz LINEAR16.
	audioSampleRateHertz = 16000
	audioChannelCount    = 1
)

type CloudSpeechConfig struct {
	ProjectID       string
	CredentialsJSON string
	Location        string
	Model           string
}

// CloudSpeechCapture streams dictated audio to Google Cloud Speech v2
// and delivers recognition results to the session handler. One capture
// serves one dictation session; Start may be called again after the
// previous stream ended.
type CloudSpeechCapture struct {
	projectID       string
	credentialsJSON string
	location        string
	model           string

	mu      sync.Mutex
	client  *speech.Client
	stream  speechpb.Speech_StreamingRecognizeClient
	newConn func() (speechpb.Speech_StreamingRecognizeClient, error)
	handler recognizer.Handler
	active  bool
}

func NewCloudSpeechCapture(cfg CloudSpeechConfig) recognizer.SpeechCapture {
	return &CloudSpeechCapture{
		projectID:       cfg.ProjectID,
		credentialsJSON: cfg.CredentialsJSON,
		location:        strings.TrimSpace(cfg.Location),
		model:           strings.TrimSpace(cfg.Model),
	}
}

func (c *CloudSpeechCapture) Start(ctx context.Context, language string, h recognizer.Handler) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active {
		return fmt.Errorf("capture already active")
	}
	slog.Info("starting cloud speech capture", "location", c.location, "language", language, "model", c.model)

	if c.client == nil {
		creds, err := credentials.DetectDefault(&credentials.DetectOptions{
			CredentialsJSON: []byte(c.credentialsJSON),
			Scopes:          []string{"https://www.googleapis.com/auth/cloud-platform"},
		})
		if err != nil {
			return fmt.Errorf("detect credentials: %w", err)
		}
		opts := []option.ClientOption{
			option.WithAuthCredentials(creds),
		}
		if c.location != "global" {
			opts = append(opts, option.WithEndpoint(fmt.Sprintf("%s-speech.googleapis.com:%d", c.location, speechAPIEndpointPort)))
		}
		client, err := speech.NewClient(ctx, opts...)
		if err != nil {
			return err
		}
		c.client = client
	}

	recognizerName := fmt.Sprintf("projects/%s/locations/%s/recognizers/_", c.projectID, c.location)
	sendConfig := func(s speechpb.Speech_StreamingRecognizeClient) error {
		return s.Send(&speechpb.StreamingRecognizeRequest{
			Recognizer: recognizerName,
			StreamingRequest: &speechpb.StreamingRecognizeRequest_StreamingConfig{
				StreamingConfig: &speechpb.StreamingRecognitionConfig{
					Config: &speechpb.RecognitionConfig{
						Model:         c.model,
						LanguageCodes: []string{language},
						DecodingConfig: &speechpb.RecognitionConfig_ExplicitDecodingConfig{
							ExplicitDecodingConfig: &speechpb.ExplicitDecodingConfig{
								Encoding:          speechpb.ExplicitDecodingConfig_LINEAR16,
								SampleRateHertz:   audioSampleRateHertz,
								AudioChannelCount: audioChannelCount,
							},
						},
						Features: &speechpb.RecognitionFeatures{},
					},
					StreamingFeatures: &speechpb.StreamingRecognitionFeatures{InterimResults: true},
				},
			},
		})
	}

	open := func() (speechpb.Speech_StreamingRecognizeClient, error) {
		s, err := c.client.StreamingRecognize(ctx)
		if err != nil {
			return nil, err
		}
		if err := sendConfig(s); err != nil {
			_ = s.CloseSend()
			return nil, err
		}
		return s, nil
	}

	stream, err := open()
	if err != nil {
		return err
	}
	c.stream = stream
	c.newConn = open
	c.handler = h
	c.active = true
	c.startReceiver(stream, h)
	slog.Info("cloud speech stream initialized")
	return nil
}

func (c *CloudSpeechCapture) WriteAudio(pcm []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.active {
		return io.ErrClosedPipe
	}
	req := &speechpb.StreamingRecognizeRequest{
		StreamingRequest: &speechpb.StreamingRecognizeRequest_Audio{
			Audio: pcm,
		},
	}
	if err := c.stream.Send(req); err != nil {
		if !isReconnectableStreamError(err) {
			return err
		}
		slog.Warn("speech send failed with reconnectable error; reconnecting", "error", err)
		if err := c.reconnectLocked(); err != nil {
			return fmt.Errorf("reconnect stream: %w", err)
		}
		return c.stream.Send(req)
	}
	return nil
}

func (c *CloudSpeechCapture) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.active {
		return nil
	}
	c.active = false
	if err := c.stream.CloseSend(); err != nil {
		slog.Warn("closing speech stream", "error", err)
	}
	return nil
}

func (c *CloudSpeechCapture) reconnectLocked() error {
	slog.Warn("speech stream aborted; reconnecting")
	_ = c.stream.CloseSend()
	next, err := c.newConn()
	if err != nil {
		slog.Error("failed to reconnect speech stream", "error", err)
		return err
	}
	c.stream = next
	c.startReceiver(next, c.handler)
	slog.Info("speech stream reconnected")
	return nil
}

func (c *CloudSpeechCapture) startReceiver(stream speechpb.Speech_StreamingRecognizeClient, h recognizer.Handler) {
	go func() {
		for {
			resp, err := stream.Recv()
			if err != nil {
				if err == io.EOF || strings.Contains(err.Error(), "context canceled") {
					slog.Info("speech receive loop stopped", "reason", err.Error())
				} else if isReconnectableStreamError(err) {
					slog.Warn("speech receive loop ended with reconnectable abort", "error", err)
				} else {
					slog.Error("speech receive loop failed", "error", err)
				}
				c.mu.Lock()
				ended := c.stream == stream && c.active
				if ended {
					c.active = false
				}
				c.mu.Unlock()
				if ended {
					h.OnEnd()
				}
				return
			}
			for _, result := range resp.GetResults() {
				if len(result.GetAlternatives()) == 0 {
					continue
				}
				h.OnResult(result.GetAlternatives()[0].GetTranscript(), result.GetIsFinal())
			}
		}
	}()
}

func isReconnectableStreamError(err error) bool {
	if err == io.EOF || strings.Contains(strings.ToLower(err.Error()), "eof") {
		return true
	}
	st, ok := status.FromError(err)
	if !ok || st.Code() != codes.Aborted {
		return false
	}
	msg := strings.ToLower(st.Message())
	return strings.Contains(msg, "max duration of 5 minutes") ||
		strings.Contains(msg, "stream timed out after receiving no more client requests")
}
