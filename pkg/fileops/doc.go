// Package fileops holds the small file helpers git-lab needs: atomic writes
// for its config file and size-bounded reads for snippet uploads.
package fileops
