package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// promptFolder asks for a folder on in. Surrounding whitespace and quotes,
// as left by drag-and-drop into a terminal, are stripped.
func promptFolder(in io.Reader, out io.Writer) (string, error) {
	fmt.Fprint(out, "Enter folder path to scan for duplicates: ")
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read folder: %w", err)
	}
	folder := cleanFolderInput(line)
	if folder == "" {
		return "", errors.New("no folder given")
	}
	return folder, nil
}

func cleanFolderInput(raw string) string {
	return strings.Trim(strings.TrimSpace(raw), `"'`)
}
