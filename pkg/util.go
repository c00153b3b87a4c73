package pkg

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"os"
	"unsafe"
)

const randStringCharset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// BytesToString converts bytes slice to a string without extra allocation
func BytesToString(buf []byte) string {
	return *(*string)(unsafe.Pointer(&buf))
}

// GenerateRandomString returns a securely generated random string of length n.
// It will return an error if the system's secure random number generator
// fails to function correctly, in which case the caller should not continue.
func GenerateRandomString(n int) (string, error) {
	if n <= 0 {
		return "", errors.New("random string length must be positive")
	}

	b := make([]byte, n)
	for i := range b {
		charIndex, err := rand.Int(rand.Reader, big.NewInt(int64(len(randStringCharset))))
		if err != nil {
			return "", err
		}
		b[i] = randStringCharset[charIndex.Int64()]
	}

	return BytesToString(b), nil
}

// PathExists returns whether the given file or directory exists
func PathExists(path string, isDir bool) (bool, error) {
	stat, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	if isDir && !stat.IsDir() {
		return false, fmt.Errorf("path %s is not a file", path)
	}
	if !isDir && stat.IsDir() {
		return false, fmt.Errorf("path %s is not a directory", path)
	}
	return true, nil
}
