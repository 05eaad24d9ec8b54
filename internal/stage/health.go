package stage

// Health reports whether a stage is ready to process jobs. Unready
// stages carry a Detail explaining what is missing (a binary, a
// credential, a reachable provider).
type Health struct {
	Name   string
	Ready  bool
	Detail string
}

// Healthy marks the named stage ready.
func Healthy(name string) Health {
	return Health{Name: name, Ready: true}
}

// Unhealthy marks the named stage unready with an explanation.
func Unhealthy(name, detail string) Health {
	return Health{
		Name:   name,
		Ready:  false,
		Detail: detail,
	}
}
