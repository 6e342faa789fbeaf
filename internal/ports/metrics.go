package ports

import "domverify/internal/types"

type MetricsPort interface {
	ObserveMutation(operation string, code types.StatusCode)
	ObserveTakeover(outcome string, domains int)
	ObserveOwnerLookup(owners int)
}
