package ospackage

// DummyToolchainName is the toolchain of software built with the system
// compiler. It is never turned into a package dependency.
const DummyToolchainName = "dummy"

// Toolchain is the compiler/library set software was built with.
type Toolchain struct {
	Name    string `yaml:"name" json:"name"`
	Version string `yaml:"version" json:"version"`
}

// IsDummy reports whether tc is the dummy (system) toolchain.
func (tc Toolchain) IsDummy() bool {
	return tc.Name == "" || tc.Name == DummyToolchainName
}

// Spec identifies one piece of installed software, e.g. zlib 1.2.8 built with GCC 4.9.2.
// Both the software being packaged and each of its dependencies are described by a Spec.
type Spec struct {
	Name          string    `yaml:"name" json:"name"`
	Version       string    `yaml:"version" json:"version"`
	VersionSuffix string    `yaml:"versionsuffix,omitempty" json:"versionsuffix,omitempty"`
	Toolchain     Toolchain `yaml:"toolchain" json:"toolchain"`
}

// AsSpec returns the toolchain described as installed software built with
// the dummy toolchain, which is how it appears in a dependency list.
func (tc Toolchain) AsSpec() Spec {
	return Spec{
		Name:      tc.Name,
		Version:   tc.Version,
		Toolchain: Toolchain{Name: DummyToolchainName, Version: DummyToolchainName},
	}
}

// Build describes a completed installation ready to be packaged.
type Build struct {
	Spec         `yaml:",inline"`
	Dependencies []Spec `yaml:"dependencies,omitempty" json:"dependencies,omitempty"`
	InstallDir   string `yaml:"installdir" json:"installdir"`
	ModuleFile   string `yaml:"modulefile" json:"modulefile"`
}

// PackageDependencies returns the specs a package of b must depend on: the
// toolchain first unless it is the dummy toolchain, then the declared
// dependencies in order.
func (b *Build) PackageDependencies() []Spec {
	deps := make([]Spec, 0, len(b.Dependencies)+1)
	if !b.Toolchain.IsDummy() {
		deps = append(deps, b.Toolchain.AsSpec())
	}
	return append(deps, b.Dependencies...)
}
