package finance_test

import "os"

func readdir(dir string) (int, error) {
	ents, err := os.ReadDir(dir)
	return len(ents), err
}
