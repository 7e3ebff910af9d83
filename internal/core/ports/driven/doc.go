// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - EntitySource: Loads one entity database batch
//   - CandidateRoster: Loads the ballot candidates
//   - Publisher: Writes the publication artifacts
//   - PromptStore: Oracle and classifier prompt templates
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - LLMService: The reasoning collaborator. Without it every pair is UNCERTAIN
//     and no connection is ever classified.
//   - VerdictCache: Persists oracle verdicts across runs.
//   - FaultStore: Persists faults for deferred retry.
//   - AuditStore: Persists internal verdicts, including NOT_DISPLAYED.
//   - Metrics: Run instrumentation.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
