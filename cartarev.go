// Package cartarev implements a controlled review service for letters of
// representation. Employees fill a form that produces a document draft,
// the draft is frozen and routed to a supervisor, and the supervisor
// authenticates with a one-time approval code to download the final Word
// document. The same merged content is projected into a Word document and
// an HTML preview so that what the employee sees matches what the
// supervisor downloads.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., sqlite/, etree/, bluemonday/).
package cartarev
