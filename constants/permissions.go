package constants

// Permission names carried in the JWT "permissions" claim.
const (
	// PermAny matches any authenticated caller.
	PermAny = "any"

	// PermDispatch covers order approval, scoring and route planning.
	PermDispatch = "waste.dispatch"

	// PermExecute covers the field-execution events (start/arrive/complete/fail/skip/conclude).
	PermExecute = "waste.execute"

	// PermIntake covers order creation and intake-note parsing.
	PermIntake = "waste.intake"

	// PermManage covers CRUD of clients, vehicles, drivers and sites.
	PermManage = "waste.manage"
)
