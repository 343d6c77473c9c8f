package errors

// Convenience constructors for common error patterns

// Config errors

func ConfigNotFound(path string) *CorpusError {
	return New(CategoryConfig, SeverityFatal, "configuration file not found").
		WithContext("path", path)
}

func ConfigInvalid(field, reason string) *CorpusError {
	return New(CategoryConfig, SeverityFatal, "invalid configuration").
		WithContext("field", field).
		WithContext("reason", reason)
}

// Parse errors

func ParseFailed(path string, cause error) *CorpusError {
	return Wrap(cause, CategoryParse, SeverityError, "source could not be parsed").
		WithContext("path", path)
}

func MetadataMissing(field string) *CorpusError {
	return New(CategoryMetadata, SeverityWarning, "metadata field missing").
		WithContext("field", field)
}

func MetadataInvalid(path string, cause error) *CorpusError {
	return Wrap(cause, CategoryMetadata, SeverityError, "metadata file invalid").
		WithContext("path", path)
}

// Conversion errors

func ConvertFailed(stage, path string, cause error) *CorpusError {
	return Wrap(cause, CategoryConvert, SeverityError, "conversion stage failed").
		WithContext("stage", stage).
		WithContext("path", path)
}

func ReadFailed(path string, cause error) *CorpusError {
	return Wrap(cause, CategoryFileSystem, SeverityError, "file unreadable").
		WithContext("path", path)
}

func WriteFailed(path string, cause error) *CorpusError {
	return Wrap(cause, CategoryFileSystem, SeverityError, "file unwritable").
		WithContext("path", path)
}
