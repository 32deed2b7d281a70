package engine

import (
	"encoding/json"
	"strconv"
	"time"
)

// parseAttributes decodes the AWS-style flat string attribute map used by
// CreateQueue/SetQueueAttributes into dst, returning the decoded redrive
// policy (if the RedrivePolicy key was present) separately since it needs
// broker-level cycle validation before being committed to a queue.
func parseAttributes(raw map[string]string, dst *Attributes) (*RedriveConfig, bool, error) {
	if v, ok := raw["VisibilityTimeout"]; ok {
		seconds, err := strconv.Atoi(v)
		if err != nil || seconds < 0 || seconds > 43200 {
			return nil, false, ErrInvalidParameter("VisibilityTimeout must be an integer between 0 and 43200")
		}

		dst.VisibilityTimeout = time.Duration(seconds) * time.Second
	}

	if v, ok := raw["MessageRetentionPeriod"]; ok {
		seconds, err := strconv.Atoi(v)
		if err != nil || seconds < 60 || seconds > 1209600 {
			return nil, false, ErrInvalidParameter("MessageRetentionPeriod must be an integer between 60 and 1209600")
		}

		dst.MessageRetentionPeriod = time.Duration(seconds) * time.Second
	}

	if v, ok := raw["MaximumMessageSize"]; ok {
		size, err := strconv.Atoi(v)
		if err != nil || size < 1024 || size > 262144 {
			return nil, false, ErrInvalidParameter("MaximumMessageSize must be an integer between 1024 and 262144")
		}

		dst.MaxMessageSize = size
	}

	if v, ok := raw["DelaySeconds"]; ok {
		seconds, err := strconv.Atoi(v)
		if err != nil || seconds < 0 || seconds > 900 {
			return nil, false, ErrInvalidParameter("DelaySeconds must be an integer between 0 and 900")
		}

		dst.DelaySeconds = time.Duration(seconds) * time.Second
	}

	if v, ok := raw["ReceiveMessageWaitTimeSeconds"]; ok {
		seconds, err := strconv.Atoi(v)
		if err != nil || seconds < 0 || seconds > 20 {
			return nil, false, ErrInvalidParameter("ReceiveMessageWaitTimeSeconds must be an integer between 0 and 20")
		}

		dst.ReceiveMessageWaitTime = time.Duration(seconds) * time.Second
	}

	if v, ok := raw["ContentBasedDeduplication"]; ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, false, ErrInvalidParameter("ContentBasedDeduplication must be true or false")
		}

		dst.ContentBasedDeduplication = b
	}

	redrive, redriveSet, err := parseRedrivePolicy(raw)
	if err != nil {
		return nil, false, err
	}

	return redrive, redriveSet, nil
}

func parseRedrivePolicy(raw map[string]string) (*RedriveConfig, bool, error) {
	v, ok := raw["RedrivePolicy"]
	if !ok {
		return nil, false, nil
	}

	if v == "" {
		return nil, true, nil
	}

	var decoded struct {
		DeadLetterTargetArn string `json:"deadLetterTargetArn"`
		MaxReceiveCount      int    `json:"maxReceiveCount"`
	}

	if err := json.Unmarshal([]byte(v), &decoded); err != nil {
		return nil, false, ErrInvalidParameter("RedrivePolicy must be a JSON object with deadLetterTargetArn and maxReceiveCount")
	}

	if decoded.DeadLetterTargetArn == "" || decoded.MaxReceiveCount <= 0 {
		return nil, false, ErrInvalidParameter("RedrivePolicy requires a non-empty deadLetterTargetArn and a positive maxReceiveCount")
	}

	return &RedriveConfig{
		TargetArn:       decoded.DeadLetterTargetArn,
		MaxReceiveCount: decoded.MaxReceiveCount,
	}, true, nil
}
