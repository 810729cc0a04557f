package main

import (
	"github.com/spf13/pflag"
)

// bind makes a flag override its config key when set.
func bind(f *pflag.Flag, key string) {
	if err := v.BindPFlag(key, f); err != nil {
		panic(err)
	}
}
