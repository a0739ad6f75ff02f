package registry

const (
	// ParamSection is the configuration sub-tree holding all registry parameters.
	ParamSection = "metrics"
	// ParamBackends is the name of parameter with the backend table, mapping backend names to URIs.
	ParamBackends = "backends"
	// ParamDefault is the name of parameter with the default backend name.
	ParamDefault = "default"
	// ParamFailSilently is the name of parameter deciding whether transport errors are swallowed and logged.
	ParamFailSilently = "fail-silently"
	// ParamMaxUDPSize is the name of parameter with the byte ceiling per UDP write.
	ParamMaxUDPSize = "max-udp-size"
	// ParamPrefix is the name of parameter with the global metric path prefix.
	ParamPrefix = "prefix"
	// ParamDialTimeout is the name of parameter with the transport connect timeout.
	ParamDialTimeout = "dial-timeout"
	// ParamWriteTimeout is the name of parameter with the socket write timeout.
	ParamWriteTimeout = "write-timeout"
)
