package preview

// Failure class of a single preview.
// ENUM(missing-target, no-active-document, file-not-found, corrupt-archive, thumbnail-not-found)
type Kind int
