// Package fs abstracts the file system operations of the local blob store so
// tests can inject I/O failures.
//
// Production code uses [Default]. Tests wrap it in a [FaultyFS]:
//
//	ffs := fs.NewFaultyFS(nil)
//	ffs.AddRule("rock.tex", fs.Fault{FailAfterBytes: 1024})
//	store := blobstore.NewLocalStore(dir, blobstore.WithFileSystem(ffs))
//
// Reads are memory mapped and do not go through this package.
package fs
