// Package storage writes downloaded media into the destination directory.
//
// A destination path that already exists is a duplicate; nothing else is
// remembered between runs. Files are written atomically: the bytes go to a
// temporary file in the same directory which is renamed into place, so an
// interrupted download never leaves a truncated file under its final name.
//
// Usage:
//
//	manager, err := storage.NewManager("downloads/pics", log)
//	if err != nil {
//	    return err
//	}
//
//	if err := manager.Check(url, filename); err != nil {
//	    return err // *errors.AlreadyExistsError
//	}
//	n, err := manager.Save(resp.Body, filename)
package storage
