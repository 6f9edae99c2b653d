package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/typelens/internal/diag"
)

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// declsByName returns all declarations with the given name.
func declsByName(decls []Declaration, name string) []Declaration {
	var out []Declaration
	for _, d := range decls {
		if d.Name == name {
			out = append(out, d)
		}
	}
	return out
}

// requireOne asserts exactly one declaration with the given name and returns it.
func requireOne(t *testing.T, decls []Declaration, name string) Declaration {
	t.Helper()
	found := declsByName(decls, name)
	require.Len(t, found, 1, "expected exactly one declaration named %s", name)
	return found[0]
}

// hasDiag reports whether the list contains a diagnostic with the reason.
func hasDiag(diags []diag.Diagnostic, reason diag.Reason) bool {
	for _, d := range diags {
		if d.Reason == reason {
			return true
		}
	}
	return false
}

// ---------------------------------------------------------------------------
// Nominal wrappers and factories
// ---------------------------------------------------------------------------

func TestClassify_WrapperWithCreateFactory(t *testing.T) {
	src := []byte(`from typing import NewType

UserId = NewType('UserId', str)

def create_user_id(value: str) -> UserId:
    if len(value) < 8:
        raise ValueError("UserId must be at least 8 characters")
    return UserId(value)
`)

	c := NewClassifier()
	decls, diags := c.Classify("test.py", src)
	require.Empty(t, diags)

	d := requireOne(t, decls, "UserId")
	assert.Equal(t, Tier2, d.Tier)
	assert.Equal(t, CategoryWrapperWithFactory, d.Category)
}

func TestClassify_WrapperWithValidatedFactory(t *testing.T) {
	src := []byte(`from typing import NewType, Annotated
from pydantic import Field, validate_call

Email = NewType('Email', str)

@validate_call
def Email(value: Annotated[str, Field(pattern=r'^[^@]+@[^@]+$')]) -> Email:
    return NewType('Email', str)(value)
`)

	c := NewClassifier()
	decls, _ := c.Classify("test.py", src)

	d := requireOne(t, decls, "Email")
	assert.Equal(t, Tier2, d.Tier)
	assert.Equal(t, CategoryWrapperWithFactory, d.Category)
}

func TestClassify_WrapperWithoutFactory(t *testing.T) {
	src := []byte(`from typing import NewType

StatusCode = NewType('StatusCode', int)
`)

	c := NewClassifier()
	decls, diags := c.Classify("test.py", src)
	require.Empty(t, diags)

	d := requireOne(t, decls, "StatusCode")
	assert.Equal(t, Tier1, d.Tier)
	assert.Equal(t, CategoryWrapperPlain, d.Category)
}

func TestClassify_SnakeCaseFactoryTransform(t *testing.T) {
	src := []byte(`from typing import NewType

UserProfileId = NewType('UserProfileId', str)

def create_user_profile_id(value: str) -> UserProfileId:
    return UserProfileId(value)
`)

	c := NewClassifier()
	decls, _ := c.Classify("test.py", src)

	d := requireOne(t, decls, "UserProfileId")
	assert.Equal(t, Tier2, d.Tier)
}

func TestClassify_FactoryReturnTypeMismatch(t *testing.T) {
	src := []byte(`from typing import NewType

UserId = NewType('UserId', str)

def create_user_id(value: str) -> str:
    return value
`)

	c := NewClassifier()
	decls, _ := c.Classify("test.py", src)

	d := requireOne(t, decls, "UserId")
	assert.Equal(t, Tier1, d.Tier)
	assert.Equal(t, CategoryWrapperPlain, d.Category)
}

func TestClassify_FactoryCaseMismatch(t *testing.T) {
	// create_userid transforms to "Userid", which is not "UserId".
	src := []byte(`from typing import NewType

UserId = NewType('UserId', str)

def create_userid(value: str) -> UserId:
    return UserId(value)
`)

	c := NewClassifier()
	decls, _ := c.Classify("test.py", src)

	d := requireOne(t, decls, "UserId")
	assert.Equal(t, Tier1, d.Tier)
}

func TestClassify_VariableNameMismatchNotDetected(t *testing.T) {
	src := []byte(`from typing import NewType

user_id_type = NewType('UserId', str)
`)

	c := NewClassifier()
	decls, _ := c.Classify("test.py", src)

	assert.Empty(t, declsByName(decls, "UserId"))
	assert.Empty(t, declsByName(decls, "user_id_type"))
}

func TestClassify_NoDuplicateDetection(t *testing.T) {
	src := []byte(`from typing import NewType

UserId = NewType('UserId', str)

def create_user_id(value: str) -> UserId:
    return UserId(value)
`)

	c := NewClassifier()
	decls, _ := c.Classify("test.py", src)

	require.Len(t, declsByName(decls, "UserId"), 1)
}

func TestClassify_MultilineValidatedFactory(t *testing.T) {
	src := []byte(`from typing import NewType, Annotated
from pydantic import Field, validate_call

Email = NewType('Email', str)

@validate_call
def Email(
    value: Annotated[
        str,
        Field(
            pattern=r'^[^@]+@[^@]+$',
            min_length=5,
            max_length=255
        )
    ]
) -> Email:
    return NewType('Email', str)(value)
`)

	c := NewClassifier()
	decls, _ := c.Classify("test.py", src)

	d := requireOne(t, decls, "Email")
	assert.Equal(t, Tier2, d.Tier)
}

func TestClassify_TrailingCommentsIgnored(t *testing.T) {
	src := []byte(`from typing import NewType, Annotated
from pydantic import validate_call, Field

UserId = NewType('UserId', str)  # user identifier

def create_user_id(value: str) -> UserId:  # factory
    return UserId(value)

Email = NewType('Email', str)

@validate_call
def Email(
    value: Annotated[str, Field(pattern=r'^.+@.+$')]
) -> Email:  # type: ignore[no-redef]
    return NewType('Email', str)(value)  # type: ignore[misc]
`)

	c := NewClassifier()
	decls, _ := c.Classify("test.py", src)

	assert.Equal(t, Tier2, requireOne(t, decls, "UserId").Tier)
	assert.Equal(t, Tier2, requireOne(t, decls, "Email").Tier)
}

func TestClassify_ValidateCallOnSameLineNotAFactory(t *testing.T) {
	// Decorator and def crammed onto one line is not the recognized shape.
	src := []byte(`from typing import NewType
from pydantic import validate_call

Email = NewType('Email', str)

@validate_call; def Email(v: str) -> Email: return Email(v)
`)

	c := NewClassifier()
	decls, _ := c.Classify("test.py", src)

	d := requireOne(t, decls, "Email")
	assert.Equal(t, Tier1, d.Tier)
}

func TestClassify_MultipleFactoriesRecordAmbiguity(t *testing.T) {
	// Both factories pair with UserId; the first in source order wins and the
	// ambiguity is recorded without changing the result.
	src := []byte(`from typing import NewType
from pydantic import validate_call

UserId = NewType('UserId', str)

def create_user_id(value: str) -> UserId:
    return UserId(value)

@validate_call
def UserId(value: str) -> UserId:
    return NewType('UserId', str)(value)
`)

	c := NewClassifier()
	decls, diags := c.Classify("test.py", src)

	d := requireOne(t, decls, "UserId")
	assert.Equal(t, Tier2, d.Tier)
	assert.True(t, hasDiag(diags, diag.ReasonPairingAmbiguity))
}

func TestClassify_UnrelatedFactorySuffixNotAmbiguous(t *testing.T) {
	src := []byte(`from typing import NewType

UserId = NewType('UserId', str)

def create_user_id(value: str) -> UserId:
    return UserId(value)

def create_user_id_from_int(value: int) -> UserId:
    return UserId(str(value))
`)

	c := NewClassifier()
	decls, diags := c.Classify("test.py", src)

	d := requireOne(t, decls, "UserId")
	assert.Equal(t, Tier2, d.Tier)
	assert.False(t, hasDiag(diags, diag.ReasonPairingAmbiguity))
}

func TestClassify_FactoryWithoutWrapper(t *testing.T) {
	src := []byte(`def create_user_id(value: str) -> str:
    return value
`)

	c := NewClassifier()
	decls, _ := c.Classify("test.py", src)

	assert.Empty(t, declsByName(decls, "UserId"))
}

// ---------------------------------------------------------------------------
// Aliases
// ---------------------------------------------------------------------------

func TestClassify_PlainAlias(t *testing.T) {
	src := []byte(`type Timestamp = float
type JsonDict = dict[str, object]
`)

	c := NewClassifier()
	decls, _ := c.Classify("test.py", src)

	for _, name := range []string{"Timestamp", "JsonDict"} {
		d := requireOne(t, decls, name)
		assert.Equal(t, Tier1, d.Tier)
		assert.Equal(t, CategoryAlias, d.Category)
	}
}

func TestClassify_ConstrainedAlias(t *testing.T) {
	src := []byte(`from typing import Annotated
from pydantic import Field, AfterValidator

type Port = Annotated[int, Field(ge=1, le=65535)]
type Slug = Annotated[str, AfterValidator(check_slug)]
type Plain = Annotated[str, "just a note"]
`)

	c := NewClassifier()
	decls, _ := c.Classify("test.py", src)

	for _, name := range []string{"Port", "Slug"} {
		d := requireOne(t, decls, name)
		assert.Equal(t, Tier2, d.Tier, "%s should be constrained", name)
		assert.Equal(t, CategoryConstrainedAlias, d.Category)
	}

	plain := requireOne(t, decls, "Plain")
	assert.Equal(t, Tier1, plain.Tier)
	assert.Equal(t, CategoryAlias, plain.Category)
}

// ---------------------------------------------------------------------------
// Classes
// ---------------------------------------------------------------------------

func TestClassify_ClassShapes(t *testing.T) {
	src := []byte(`from enum import Enum
from typing import TypedDict, Protocol
from dataclasses import dataclass
from pydantic import BaseModel

class User(BaseModel):
    """A registered account."""
    id: str
    email: str

class Color(Enum):
    RED = 1
    GREEN = 2

class Point(TypedDict):
    x: int
    y: int

class Reader(Protocol):
    def read(self) -> bytes: ...

@dataclass
class Config:
    timeout: int

class Helper:
    pass
`)

	c := NewClassifier()
	decls, diags := c.Classify("test.py", src)
	require.Empty(t, diags)

	user := requireOne(t, decls, "User")
	assert.Equal(t, Tier3, user.Tier)
	assert.Equal(t, CategoryCompositeRecord, user.Category)
	assert.True(t, user.HasDocstring)
	assert.Equal(t, "A registered account.", user.Docstring)

	color := requireOne(t, decls, "Color")
	assert.Equal(t, TierOther, color.Tier)
	assert.Equal(t, CategoryClosedChoiceRecord, color.Category)

	point := requireOne(t, decls, "Point")
	assert.Equal(t, CategoryStructuredRecord, point.Category)

	reader := requireOne(t, decls, "Reader")
	assert.Equal(t, CategoryStructuredRecord, reader.Category)

	config := requireOne(t, decls, "Config")
	assert.Equal(t, TierOther, config.Tier)
	assert.Equal(t, CategoryStructuredRecord, config.Category)

	helper := requireOne(t, decls, "Helper")
	assert.Equal(t, CategoryOtherRecord, helper.Category)
}

func TestClassify_DottedAndGenericBases(t *testing.T) {
	src := []byte(`import enum
import pydantic
from typing import Protocol, TypeVar

T = TypeVar('T')

class Status(enum.Enum):
    OK = 1

class Account(pydantic.BaseModel):
    name: str

class Source(Protocol[T]):
    def next(self) -> T: ...
`)

	c := NewClassifier()
	decls, _ := c.Classify("test.py", src)

	assert.Equal(t, CategoryClosedChoiceRecord, requireOne(t, decls, "Status").Category)
	assert.Equal(t, Tier3, requireOne(t, decls, "Account").Tier)
	assert.Equal(t, CategoryStructuredRecord, requireOne(t, decls, "Source").Category)
}

func TestClassify_DocstringDirectives(t *testing.T) {
	src := []byte(`from pydantic import BaseModel

class Legacy(BaseModel):
    """Kept for the v1 import path.

    @keep-as-is
    """
    raw: str

class Loose(BaseModel):
    """Needs validation on every field.

    @target-level: tier2
    """
    raw: str
`)

	c := NewClassifier()
	decls, _ := c.Classify("test.py", src)

	legacy := requireOne(t, decls, "Legacy")
	assert.True(t, legacy.KeepAsIs)
	assert.Empty(t, legacy.TargetTier)

	loose := requireOne(t, decls, "Loose")
	assert.False(t, loose.KeepAsIs)
	assert.Equal(t, Tier2, loose.TargetTier)
	// Directives record intent; the computed tier is untouched.
	assert.Equal(t, Tier3, loose.Tier)
}

// ---------------------------------------------------------------------------
// Scoping, merging, degraded input
// ---------------------------------------------------------------------------

func TestClassify_NestedDeclarationsIgnored(t *testing.T) {
	src := []byte(`from typing import NewType

class UserModule:
    UserId = NewType('UserId', str)

    @staticmethod
    def create_user_id(value: str) -> UserId:
        return UserModule.UserId(value)
`)

	c := NewClassifier()
	decls, _ := c.Classify("test.py", src)

	assert.Empty(t, declsByName(decls, "UserId"))
}

func TestClassify_DeclarationShapesInsideStringLiteralIgnored(t *testing.T) {
	// Documentation snippets inside a triple-quoted literal look exactly like
	// declarations; the textual pass must not collect them.
	src := []byte(`from typing import NewType

EXAMPLE = """
type Foo = int
UserId = NewType('UserId', str)
def create_user_id(value: str) -> UserId:
    return UserId(value)
"""

StatusCode = NewType('StatusCode', int)
`)

	c := NewClassifier()
	decls, diags := c.Classify("snippets.py", src)
	require.Empty(t, diags)

	assert.Empty(t, declsByName(decls, "Foo"))
	assert.Empty(t, declsByName(decls, "UserId"))

	d := requireOne(t, decls, "StatusCode")
	assert.Equal(t, Tier1, d.Tier)
	assert.Equal(t, CategoryWrapperPlain, d.Category)
}

func TestMarkStringLines(t *testing.T) {
	lines := []string{
		`DOC = '''`,
		`type Hidden = int`,
		`'''`,
		`x = """closed""" + '''also closed'''`,
		`type Visible = int`,
	}
	flags := markStringLines(lines)
	assert.Equal(t, []bool{false, true, true, false, false}, flags)
}

func TestClassify_MixedRealisticUnit(t *testing.T) {
	src := []byte(`from typing import NewType, Annotated
from pydantic import BaseModel, Field, validate_call
from dataclasses import dataclass

type Timestamp = float
type JsonDict = dict[str, object]

StatusCode = NewType('StatusCode', int)

UserId = NewType('UserId', str)

def create_user_id(value: str) -> UserId:
    return UserId(value)

Email = NewType('Email', str)

@validate_call
def Email(value: Annotated[str, Field(pattern=r'^.+@.+$')]) -> Email:
    return NewType('Email', str)(value)

class User(BaseModel):
    id: UserId
    email: Email

@dataclass
class Config:
    timeout: int
`)

	c := NewClassifier()
	decls, _ := c.Classify("test.py", src)

	byTier := make(map[Tier][]string)
	for _, d := range decls {
		byTier[d.Tier] = append(byTier[d.Tier], d.Name)
	}

	assert.ElementsMatch(t, []string{"Timestamp", "JsonDict", "StatusCode"}, byTier[Tier1])
	assert.ElementsMatch(t, []string{"UserId", "Email"}, byTier[Tier2])
	assert.ElementsMatch(t, []string{"User"}, byTier[Tier3])
	assert.ElementsMatch(t, []string{"Config"}, byTier[TierOther])

	// Source order is preserved.
	for i := 1; i < len(decls); i++ {
		assert.LessOrEqual(t, decls[i-1].Line, decls[i].Line)
	}
}

func TestClassify_EmptyUnit(t *testing.T) {
	c := NewClassifier()
	decls, diags := c.Classify("empty.py", nil)
	assert.Empty(t, decls)
	assert.Empty(t, diags)
}

func TestClassify_SyntaxErrorRecordsDiagnostic(t *testing.T) {
	src := []byte(`from typing import NewType

UserId = NewType('UserId' str)  # missing comma

StatusCode = NewType('StatusCode', int)
`)

	c := NewClassifier()
	decls, diags := c.Classify("broken.py", src)

	assert.True(t, hasDiag(diags, diag.ReasonSyntaxParse))
	// The well-formed wrapper still classifies.
	d := requireOne(t, decls, "StatusCode")
	assert.Equal(t, Tier1, d.Tier)
}

func TestClassify_UnitIsolation(t *testing.T) {
	c := NewClassifier()

	decls1, _ := c.Classify("a.py", []byte(`from typing import NewType

UserId = NewType('UserId', str)

def create_user_id(value: str) -> UserId:
    return UserId(value)
`))
	decls2, _ := c.Classify("b.py", []byte(`from typing import NewType

Email = NewType('Email', str)
`))

	assert.Equal(t, Tier2, requireOne(t, decls1, "UserId").Tier)
	assert.Empty(t, declsByName(decls1, "Email"))

	// The factory from a.py must not upgrade b.py's wrapper.
	assert.Equal(t, Tier1, requireOne(t, decls2, "Email").Tier)
	assert.Empty(t, declsByName(decls2, "UserId"))
}

func TestSnakeToPascal(t *testing.T) {
	cases := map[string]string{
		"user_id":         "UserId",
		"user_profile_id": "UserProfileId",
		"userid":          "Userid",
		"id":              "Id",
		"a__b":            "AB",
	}
	for in, want := range cases {
		assert.Equal(t, want, snakeToPascal(in), "snakeToPascal(%q)", in)
	}
}
