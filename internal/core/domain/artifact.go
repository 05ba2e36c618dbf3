package domain

// ArtifactKind distinguishes the two output directories.
type ArtifactKind string

// Artifact kinds.
const (
	// ArtifactSharedProvider is a rendered ProviderConfig.
	ArtifactSharedProvider ArtifactKind = "shared provider"

	// ArtifactDescriptor is a rendered DescriptorConfig.
	ArtifactDescriptor ArtifactKind = "descriptor"
)

// String returns the string representation.
func (k ArtifactKind) String() string {
	return string(k)
}

// ArtifactExtension is appended to resource names to form artifact file names.
const ArtifactExtension = ".json"

// Artifact is a canonical rendering bound to its output path.
type Artifact struct {
	// Kind is the resource kind.
	Kind ArtifactKind

	// Name is the resource name.
	Name string

	// Path is where the artifact is persisted.
	Path string

	// Content is the canonical rendering.
	Content []byte
}

// WriteOutcome reports what the change gate did with an artifact.
type WriteOutcome string

// Write outcomes.
const (
	// OutcomeCreated means the artifact did not exist and was written.
	OutcomeCreated WriteOutcome = "created"

	// OutcomeUpdated means the artifact existed with different bytes and was overwritten.
	OutcomeUpdated WriteOutcome = "updated"

	// OutcomeUnchanged means the artifact already had identical bytes.
	OutcomeUnchanged WriteOutcome = "unchanged"

	// OutcomeFailed means rendering or writing failed.
	OutcomeFailed WriteOutcome = "failed"
)

// String returns the string representation.
func (o WriteOutcome) String() string {
	return string(o)
}

// Wrote returns true if the outcome modified the filesystem.
func (o WriteOutcome) Wrote() bool {
	return o == OutcomeCreated || o == OutcomeUpdated
}
