package overtime

import "errors"

var (
	ErrOvertimeRecordNotFound = errors.New("overtime record not found")
	ErrOvertimeAlreadyDecided = errors.New("overtime record already approved or rejected")
)
