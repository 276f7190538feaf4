package errors

// Code is a machine-readable error code.
type Code string

const (
	// Dice errors
	CodeDiceBandPartition Code = "DICE_BAND_PARTITION"
	CodeDiceNotRolled     Code = "DICE_NOT_ROLLED"
	CodeDiceTypeMismatch  Code = "DICE_TYPE_MISMATCH"
	CodeDiceInvalidConfig Code = "DICE_INVALID_CONFIG"

	// Battle errors
	CodeBattleActionUnavailable Code = "BATTLE_ACTION_UNAVAILABLE"
	CodeBattleFleeNotRolled     Code = "BATTLE_FLEE_DICE_NOT_ROLLED"

	// Recipe errors
	CodeRecipeUnknownResource Code = "RECIPE_UNKNOWN_RESOURCE"

	// Schedule errors
	CodeScheduleEnded Code = "SCHEDULE_ENDED"

	// Storage errors
	CodeNotFound           Code = "NOT_FOUND"
	CodePersistenceFailure Code = "PERSISTENCE_FAILURE"
)
