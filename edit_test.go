// edit_test.go -- tests for unique-match replacement

package agentfs

import (
	"errors"
	"testing"
)

func TestEditReplaceUnique(t *testing.T) {
	assert := newAsserter(t)
	afs, _ := openTree(t, &Options{})

	err := afs.WriteFile("doc.txt", "# Test Project\n\nThis is a test.\n")
	assert(err == nil, "seed: %s", err)

	ok, err := afs.EditReplace("doc.txt", "Test Project", "My Project", true)
	assert(err == nil, "edit: %s", err)
	assert(ok, "edit reported no change")

	got, err := afs.ReadFile("doc.txt", "")
	assert(err == nil, "read: %s", err)
	assert(got == "# My Project\n\nThis is a test.\n", "content mismatch: %q", got)
}

func TestEditReplaceStrictNotFound(t *testing.T) {
	assert := newAsserter(t)
	afs, _ := openTree(t, &Options{})

	err := afs.WriteFile("doc.txt", "nothing to see\n")
	assert(err == nil, "seed: %s", err)

	ok, err := afs.EditReplace("doc.txt", "NonExistent", "x", true)
	assert(errors.Is(err, ErrTextNotFound), "exp ErrTextNotFound, saw %s", err)
	assert(!ok, "edit claimed success")

	// lenient mode: same situation is a quiet no-op
	ok, err = afs.EditReplace("doc.txt", "NonExistent", "x", false)
	assert(err == nil, "lenient edit: %s", err)
	assert(!ok, "lenient edit claimed a change")
}

func TestEditReplaceStrictNotUnique(t *testing.T) {
	assert := newAsserter(t)
	afs, _ := openTree(t, &Options{})

	err := afs.WriteFile("doc.txt", "foo foo")
	assert(err == nil, "seed: %s", err)

	ok, err := afs.EditReplace("doc.txt", "foo", "bar", true)
	assert(!ok, "edit claimed success")

	var nu *NotUniqueError
	assert(errors.As(err, &nu), "exp NotUniqueError, saw %s", err)
	assert(nu.Count == 2, "exp count 2, saw %d", nu.Count)

	// file must be untouched after the strict failure
	got, err := afs.ReadFile("doc.txt", "")
	assert(err == nil, "read: %s", err)
	assert(got == "foo foo", "strict failure modified the file: %q", got)

	// lenient mode replaces the first occurrence only
	ok, err = afs.EditReplace("doc.txt", "foo", "bar", false)
	assert(err == nil, "lenient edit: %s", err)
	assert(ok, "lenient edit reported no change")

	got, err = afs.ReadFile("doc.txt", "")
	assert(err == nil, "read: %s", err)
	assert(got == "bar foo", "exp %q, saw %q", "bar foo", got)
}

// replacing a unique occurrence with itself succeeds and leaves the
// contents bit-identical
func TestEditReplaceSelf(t *testing.T) {
	assert := newAsserter(t)
	afs, _ := openTree(t, &Options{})

	err := afs.WriteFile("doc.txt", "alpha beta gamma\n")
	assert(err == nil, "seed: %s", err)

	ok, err := afs.EditReplace("doc.txt", "beta", "beta", true)
	assert(err == nil, "edit: %s", err)
	assert(ok, "self-edit reported no change")

	got, err := afs.ReadFile("doc.txt", "")
	assert(err == nil, "read: %s", err)
	assert(got == "alpha beta gamma\n", "self-edit changed contents: %q", got)
}
