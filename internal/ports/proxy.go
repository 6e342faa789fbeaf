package ports

// ProxyPort bridges the engine to the domain verification agent.
type ProxyPort interface {
	IsCallerVerifier(uid int) bool
	SendBroadcastForPackages(packageNames []string)
}
