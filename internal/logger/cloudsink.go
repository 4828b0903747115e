package logger

import (
	"context"
	"fmt"

	"cloud.google.com/go/logging"
)

// CloudSink mirrors log lines into a Cloud Logging log.
type CloudSink struct {
	logger *logging.Logger
}

// NewCloudSink dials projectID and returns a Sink writing to logID.
func NewCloudSink(ctx context.Context, projectID, logID string) (*CloudSink, error) {
	client, err := logging.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("logger: cloud logging client: %w", err)
	}
	return &CloudSink{logger: client.Logger(logID)}, nil
}

// Write implements Sink.
func (s *CloudSink) Write(level int, line string) {
	sev := logging.Info
	switch {
	case level < 0:
		sev = logging.Error
	case level >= 2:
		sev = logging.Debug
	}
	s.logger.Log(logging.Entry{Severity: sev, Payload: line})
}

// Close flushes buffered entries to Cloud Logging. The logging client that
// NewCloudSink opened is not closed.
func (s *CloudSink) Close() error {
	return s.logger.Flush()
}
