//go:build cgo

// Command libadder builds the adder as a C library exporting
//
//	int32_t add(int32_t a, int32_t b);
//
// Build with:
//
//	go build -buildmode=c-shared -o libadder.so ./cmd/libadder
//	go build -buildmode=c-archive -o libadder.a ./cmd/libadder
package main

/*
#include <stdint.h>
*/
import "C"

import "github.com/skim-satellite/adder/internal/adder"

//export add
func add(a, b C.int32_t) C.int32_t {
	return C.int32_t(adder.Add(int32(a), int32(b)))
}

// addGo calls the exported symbol with Go types; test files cannot use cgo.
func addGo(a, b int32) int32 {
	return int32(add(C.int32_t(a), C.int32_t(b)))
}

func main() {}
