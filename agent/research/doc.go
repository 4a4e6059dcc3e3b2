// Package research implements the Research Agent (C6): the bounded
// Plan -> Search -> Integrate -> Reflect loop that assembles a
// MemoryContext for one recall request by fanning out across the hybrid
// retrieval substrate (C2-C4) and hydrating admitted pages from the
// memory store (C1).
package research
