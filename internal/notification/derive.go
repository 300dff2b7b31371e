package notification

import "hash/fnv"

// DeriveAlarmID folds a string task id into the platform's signed 32-bit
// alarm id space. Deterministic and non-negative; collisions are tolerated
// because the payload still carries the full task id.
func DeriveAlarmID(taskID string) int32 {
	h := fnv.New32a()
	h.Write([]byte(taskID))
	return int32(h.Sum32() & 0x7fffffff)
}
