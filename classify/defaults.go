package classify

// DefaultMarker is the directive that opts a file into client-side execution.
const DefaultMarker = "use client"

// DefaultMarkerWindow approximates "top of file" as the leading 500 characters.
const DefaultMarkerWindow = 500

// DefaultMaxFileSize is the per-file read limit in bytes. 0 disables the limit.
const DefaultMaxFileSize int64 = 0

// DefaultSignatures lists client-only features in evaluation order.
var DefaultSignatures = []string{
	// React state and lifecycle hooks
	"useState",
	"useEffect",
	"useContext",
	"useReducer",
	"useRef",
	"useCallback",
	"useMemo",
	"useLayoutEffect",
	"useImperativeHandle",

	// Router hooks
	"useRouter",
	"usePathname",
	"useParams",
	"useSearchParams",

	// DOM event handler props
	"onClick",
	"onChange",
	"onSubmit",
	"onMouseEnter",
	"onMouseLeave",

	// Context creation
	"createContext",
}
