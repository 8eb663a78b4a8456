package availability

import (
	"fmt"
	"sort"
	"strings"
)

// Service-type tokens accepted by the booking API. Durations are fixed
// business constants in whole hours.
const (
	ServiceSmallTattoo  = "small"
	ServiceMediumTattoo = "medium"
	ServiceLargeTattoo  = "large"
	ServiceFullSession  = "session"
)

var serviceDurations = map[string]int{
	ServiceSmallTattoo:  2,
	ServiceMediumTattoo: 4,
	ServiceLargeTattoo:  8,
	ServiceFullSession:  6,
}

// InvalidServiceTypeError reports an unrecognized service-type token
// together with the accepted tokens.
type InvalidServiceTypeError struct {
	Token string
}

func (e *InvalidServiceTypeError) Error() string {
	return fmt.Sprintf("unknown service type %q; valid types: %s",
		e.Token, strings.Join(ServiceTypes(), ", "))
}

// ServiceTypes returns the accepted tokens in stable order.
func ServiceTypes() []string {
	tokens := make([]string, 0, len(serviceDurations))
	for t := range serviceDurations {
		tokens = append(tokens, t)
	}
	sort.Strings(tokens)
	return tokens
}

// DurationHours resolves a service-type token to its duration in whole
// hours.
func DurationHours(token string) (int, error) {
	hours, ok := serviceDurations[token]
	if !ok {
		return 0, &InvalidServiceTypeError{Token: token}
	}
	return hours, nil
}
