package yml

import (
	"os"

	cerrors "github.com/nuskha/nuskha/internal/errors"
)

// ReadFile parses the dialect file at path.
func ReadFile(path string, opts ParseOptions) (Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, cerrors.ReadFailed(path, err)
	}
	rec, err := Parse(string(data), opts)
	if err != nil {
		return nil, cerrors.MetadataInvalid(path, err)
	}
	return rec, nil
}

// WriteFile serializes rec to path with a trailing newline.
func WriteFile(path string, rec Record, opts SerializeOptions) error {
	data := Serialize(rec, opts) + "\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		return cerrors.WriteFailed(path, err)
	}
	return nil
}

// RepairFile attempts to repair the dialect file at path in place. The
// file is rewritten only when the repaired record parses cleanly;
// otherwise it is left untouched and the error is returned.
func RepairFile(path string) (Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, cerrors.ReadFailed(path, err)
	}
	rec, err := Repair(string(data))
	if err != nil {
		return nil, cerrors.MetadataInvalid(path, err)
	}
	if err := WriteFile(path, rec, SerializeOptions{Reflow: true}); err != nil {
		return nil, err
	}
	return rec, nil
}
