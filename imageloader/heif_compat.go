//go:build cgo && linux && amd64

package imageloader

// This file exists so cgo compiles heif_compat.cpp, which provides ABI
// compatibility shims for the prebuilt static libraries bundled with
// github.com/vegidio/heif-go on systems with glibc older than 2.38 or
// libstdc++ older than GCC 13. See heif_compat.cpp for details.

import "C"
