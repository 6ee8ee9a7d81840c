// Package kafkabootstrap validates a cluster's broker list at compile time
// by constructing (and immediately closing) a github.com/twmb/franz-go
// client, the same library jeongukjae-redpanda-data-connect's franz_client.go
// uses to talk to Kafka. Compilation never dials a broker (spec.md §5: "no
// suspension during compilation") — franz-go connects lazily, so building
// the client here only validates the seed broker list is well-formed.
package kafkabootstrap

import (
	"fmt"

	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/foundryhq/foundry/internal/ferrors"
)

// ValidateBrokers rejects a malformed broker list without connecting.
func ValidateBrokers(clusterName string, brokers []string) error {
	if len(brokers) == 0 {
		return ferrors.NewValidation(fmt.Sprintf("cluster %q: at least one broker is required", clusterName))
	}

	client, err := kgo.NewClient(kgo.SeedBrokers(brokers...))
	if err != nil {
		return ferrors.NewValidation(fmt.Sprintf("cluster %q: %s", clusterName, err.Error()))
	}
	client.Close()
	return nil
}
