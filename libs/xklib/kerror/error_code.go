package kerror

type ErrorCode string

var (
	exitCodeMap = createMapExitCode()
)

const (
	EC_OK                ErrorCode = "OK"
	EC_UNKNOWN           ErrorCode = "UNKNOWN"
	EC_NOT_FOUND         ErrorCode = "NOT_FOUND"
	EC_INVALID_PARAMETER ErrorCode = "INVALID_PARAMETER"
	EC_INTERNAL_ERROR    ErrorCode = "INTERNAL_ERROR"
	EC_UNIMPLEMENTED     ErrorCode = "UNIMPLEMENTED"
	EC_NETWORK_ERR       ErrorCode = "NETWORK_ERR"
)

func (code ErrorCode) String() string {
	return string(code)
}

// ToExitCode maps an error code to the process exit status used by the command line tools.
func (code ErrorCode) ToExitCode() int {
	exit, ok := exitCodeMap[code]
	if ok {
		return exit
	}
	return 1
}

func createMapExitCode() map[ErrorCode]int {
	dict := map[ErrorCode]int{}
	dict[EC_OK] = 0
	dict[EC_UNKNOWN] = 1
	dict[EC_INTERNAL_ERROR] = 1
	dict[EC_INVALID_PARAMETER] = 2
	dict[EC_NOT_FOUND] = 3
	dict[EC_NETWORK_ERR] = 4
	dict[EC_UNIMPLEMENTED] = 5
	return dict
}
