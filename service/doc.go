// Package service implements the Service Facade (C7): the single
// reentrant entry point exposing Memorize, Research, and Forget over the
// Memory Agent (C5), the Research Agent (C6), and the memory store (C1).
package service
