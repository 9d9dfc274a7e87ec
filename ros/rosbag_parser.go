// Package ros holds the ROS messages clusterviz consumes and produces, and helpers for
// reading them out of rosbags.
package ros

import (
	"encoding/json"
	"io"
	"os"

	"github.com/edaniels/gobag/rosbag"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

// ReadBag reads the contents of a rosbag into a gobag data structure.
func ReadBag(filename string) (rb *rosbag.RosBag, err error) {
	//nolint:gosec
	f, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to open input file")
	}
	defer func() {
		err = multierr.Combine(err, f.Close())
	}()

	rb = rosbag.NewRosBag()
	if err := rb.Read(f); err != nil {
		return nil, errors.Wrapf(err, "unable to create ros bag, error")
	}
	return rb, nil
}

// AllMessagesForTopic returns the raw JSON of every message for a specific topic in the ros bag.
// Topics are keyed the way gobag keys them: lower case, without the leading slash and with the
// remaining slashes replaced by underscores.
func AllMessagesForTopic(rb *rosbag.RosBag, topic string) ([]json.RawMessage, error) {
	if err := rb.ParseTopicsToJSON(
		"",
		func(int64) bool { return true },
		func(t string) bool { return t == topic },
		false,
	); err != nil {
		return nil, errors.Wrapf(err, "error while parsing bag to JSON")
	}

	msgs := rb.TopicsAsJSON[topic]
	if msgs == nil {
		return nil, errors.Errorf("no messages for topic %s", topic)
	}

	var all []json.RawMessage
	for {
		data, err := msgs.ReadBytes('\n')
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, err
		}
		all = append(all, json.RawMessage(data))
	}
	return all, nil
}

// TopicMessages decodes every message of a topic into T.
func TopicMessages[T any](rb *rosbag.RosBag, topic string) ([]BagMessage[T], error) {
	raw, err := AllMessagesForTopic(rb, topic)
	if err != nil {
		return nil, err
	}
	return DecodeBagMessages[T](raw)
}

// DecodeBagMessages decodes exported bag lines of the form {"meta": {...}, "data": {...}}.
func DecodeBagMessages[T any](raw []json.RawMessage) ([]BagMessage[T], error) {
	out := make([]BagMessage[T], 0, len(raw))
	for i, line := range raw {
		var msg BagMessage[T]
		if err := json.Unmarshal(line, &msg); err != nil {
			return nil, errors.Wrapf(err, "message %d", i)
		}
		out = append(out, msg)
	}
	return out, nil
}
