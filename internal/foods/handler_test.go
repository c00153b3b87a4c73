package foods

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func addTestFood(t *testing.T, handler *Handler, food Food) Food {
	t.Helper()

	reqBody, err := json.Marshal(food)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/foods", bytes.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	handler.HandleAdd(rr, req)
	require.Equal(t, http.StatusCreated, rr.Code)

	var added Food
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &added))
	return added
}

func TestHandler_AddAndGetFood(t *testing.T) {
	handler := NewHandler(NewMockFoodsRepo())

	serving := "100 g"
	added := addTestFood(t, handler, Food{
		Name: "Oats", Calories: 380, Protein: 13, Carbs: 68, Fat: 7, ServingType: &serving,
	})
	assert.Equal(t, 1, added.ID)

	req := httptest.NewRequest(http.MethodGet, "/foods/1", nil)
	req = mux.SetURLVars(req, map[string]string{"id": "1"})
	rr := httptest.NewRecorder()
	handler.HandleGet(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var got Food
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, "Oats", got.Name)
	require.NotNil(t, got.ServingType)
	assert.Equal(t, "100 g", *got.ServingType)
}

func TestHandler_AddFood_MissingName(t *testing.T) {
	handler := NewHandler(NewMockFoodsRepo())

	reqBody, err := json.Marshal(Food{Calories: 100})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/foods", bytes.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	handler.HandleAdd(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHandler_ListFoods_SearchByName(t *testing.T) {
	handler := NewHandler(NewMockFoodsRepo())
	addTestFood(t, handler, Food{Name: "Chicken Breast", Calories: 165})
	addTestFood(t, handler, Food{Name: "Chicken Thigh", Calories: 209})
	addTestFood(t, handler, Food{Name: "Oats", Calories: 380})

	req := httptest.NewRequest(http.MethodGet, "/foods?name=chicken", nil)
	rr := httptest.NewRecorder()
	handler.HandleList(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var listed []Food
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &listed))
	assert.Len(t, listed, 2)
}

func TestHandler_DeleteFood_NotFound(t *testing.T) {
	handler := NewHandler(NewMockFoodsRepo())

	req := httptest.NewRequest(http.MethodDelete, "/foods/9", nil)
	req = mux.SetURLVars(req, map[string]string{"id": "9"})
	rr := httptest.NewRecorder()
	handler.HandleDelete(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}
