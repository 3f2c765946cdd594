package config

// Validator is implemented by configurations that can check themselves
// after loading.
type Validator interface {
	Validate() error
}

// Defaulter is implemented by configurations that fill unset fields before
// validation.
type Defaulter interface {
	ApplyDefaults()
}
