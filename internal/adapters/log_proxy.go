package adapters

import (
	"github.com/rs/zerolog"

	"domverify/internal/ports"
)

// LogProxy stands in for a verification agent by logging broadcasts.
type LogProxy struct {
	Logger    zerolog.Logger
	verifiers map[int]struct{}
}

var _ ports.ProxyPort = LogProxy{}

func NewLogProxy(logger zerolog.Logger, verifierUIDs []int) LogProxy {
	return LogProxy{Logger: logger, verifiers: uidSet(verifierUIDs)}
}

func (p LogProxy) IsCallerVerifier(uid int) bool {
	_, ok := p.verifiers[uid]
	return ok
}

func (p LogProxy) SendBroadcastForPackages(packageNames []string) {
	p.Logger.Info().Strs("packages", packageNames).Msg("domain verification broadcast")
}

func uidSet(uids []int) map[int]struct{} {
	set := make(map[int]struct{}, len(uids))
	for _, uid := range uids {
		set[uid] = struct{}{}
	}
	return set
}
