// Package logx is a thin structured-logging layer over zerolog.
//
// It exposes a Service whose sinks and level can be swapped at runtime
// (config hot reload) without invalidating Logger values handed out
// earlier, and a small Field-func API so call sites stay terse.
package logx
